package preprocess

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func indexedName(prefix string, index int) string {
	return fmt.Sprintf("%s_%d.png", prefix, index)
}

// asExitError extracts a process exit code from err, returning ok=false
// when err did not come from a subprocess exit (e.g. it failed to start).
func asExitError(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
