package concurrency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPoolPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(4)
	results, err := pool.Run(context.Background(), 10, func(ctx context.Context, i int) (interface{}, error) {
		return i * i, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 10)
	for i, r := range results {
		require.Equal(t, i, r.Index)
		require.Equal(t, i*i, r.Value)
	}
}

func TestWorkerPoolPropagatesError(t *testing.T) {
	pool := NewWorkerPool(2)
	boom := errors.New("boom")
	_, err := pool.Run(context.Background(), 5, func(ctx context.Context, i int) (interface{}, error) {
		if i == 3 {
			return nil, boom
		}
		return i, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestWorkerPoolRespectsCancellation(t *testing.T) {
	pool := NewWorkerPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := pool.Run(ctx, 3, func(ctx context.Context, i int) (interface{}, error) {
		return i, nil
	})
	require.Error(t, err)
	require.Len(t, results, 3)
}

func TestNewWorkerPoolClampsSize(t *testing.T) {
	pool := NewWorkerPool(0)
	require.Equal(t, 1, pool.size)
}
