// Package vfierrors defines the typed error taxonomy raised by the VFI
// pipeline. Callers pattern-match on Kind via errors.As; none of these are
// ever surfaced to the user as a bare string.
package vfierrors

import "fmt"

// Kind identifies a class of pipeline failure.
type Kind int

const (
	// InvalidInput covers bad configuration, satellite, band, product, or crop.
	InvalidInput Kind = iota
	// InsufficientFrames is raised when fewer frames than required are found.
	InsufficientFrames
	// GeometryMismatch is raised when a frame's pixel geometry differs from the cohort's.
	GeometryMismatch
	// InterpolatorFailure is raised when the interpolator subprocess exits non-zero.
	InterpolatorFailure
	// EncoderDied is raised when the encoder's stdin pipe breaks.
	EncoderDied
	// EncoderFailure is raised when the encoder exits non-zero or produces empty output.
	EncoderFailure
	// ExternalToolContract is raised when a tool exits zero but produces no/invalid output.
	ExternalToolContract
	// ExternalToolFailure is raised when an auxiliary tool (colourise) exits non-zero,
	// or when the interpolator or encoder executable cannot be found or started.
	ExternalToolFailure
	// Unsupported is raised for a disallowed configuration combination.
	Unsupported
	// Cancelled is raised when an external cancel signal aborts the pipeline. Never shown to the user.
	Cancelled
	// IOError covers scratch-directory and other filesystem failures.
	IOError
	// OrderingViolation is raised on an internal invariant breach in the encoder sink. Indicates a bug.
	OrderingViolation
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case InsufficientFrames:
		return "InsufficientFrames"
	case GeometryMismatch:
		return "GeometryMismatch"
	case InterpolatorFailure:
		return "InterpolatorFailure"
	case EncoderDied:
		return "EncoderDied"
	case EncoderFailure:
		return "EncoderFailure"
	case ExternalToolContract:
		return "ExternalToolContract"
	case ExternalToolFailure:
		return "ExternalToolFailure"
	case Unsupported:
		return "Unsupported"
	case Cancelled:
		return "Cancelled"
	case IOError:
		return "IOError"
	case OrderingViolation:
		return "OrderingViolation"
	default:
		return "Unknown"
	}
}

// Error is the single error type raised by every pipeline component.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// optional structured fields, populated depending on Kind
	Path      string
	Got       [2]int // width,height
	Expected  [2]int // width,height
	ExitCode  int
	StderrTl  string
	PairIndex int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsSilent reports whether this error kind should abort silently instead of
// being surfaced as a user-visible failure (Cancelled, OrderingViolation).
func (e *Error) IsSilent() bool {
	return e.Kind == Cancelled || e.Kind == OrderingViolation
}

// UserMessage renders a message fit for CLI/GUI display.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case Cancelled:
		return ""
	case GeometryMismatch:
		return fmt.Sprintf("frame %q has geometry %dx%d, expected %dx%d",
			e.Path, e.Got[0], e.Got[1], e.Expected[0], e.Expected[1])
	case InterpolatorFailure:
		return fmt.Sprintf("interpolator failed on pair %d (exit %d): %s", e.PairIndex, e.ExitCode, e.StderrTl)
	case EncoderDied:
		return fmt.Sprintf("encoder died: %s", e.StderrTl)
	case EncoderFailure:
		return fmt.Sprintf("encoder failed (exit %d): %s", e.ExitCode, e.Message)
	default:
		return e.Error()
	}
}

// New builds a plain Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// InvalidInputf builds an InvalidInput error with a formatted message.
func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// GeometryMismatchErr builds a GeometryMismatch error with structured fields.
func GeometryMismatchErr(path string, got, expected [2]int) *Error {
	return &Error{
		Kind:     GeometryMismatch,
		Message:  "geometry mismatch",
		Path:     path,
		Got:      got,
		Expected: expected,
	}
}

// InsufficientFramesErr builds an InsufficientFrames error.
func InsufficientFramesErr(count, required int) *Error {
	return &Error{
		Kind:    InsufficientFrames,
		Message: fmt.Sprintf("found %d frames, need at least %d", count, required),
	}
}

// InterpolatorFailureErr builds an InterpolatorFailure error.
func InterpolatorFailureErr(pairIndex, exitCode int, stderrTail string) *Error {
	return &Error{
		Kind:      InterpolatorFailure,
		Message:   "interpolator subprocess failed",
		PairIndex: pairIndex,
		ExitCode:  exitCode,
		StderrTl:  stderrTail,
	}
}

// EncoderDiedErr builds an EncoderDied error.
func EncoderDiedErr(stderrTail string) *Error {
	return &Error{Kind: EncoderDied, Message: "broken pipe writing to encoder", StderrTl: stderrTail}
}

// EncoderFailureErr builds an EncoderFailure error.
func EncoderFailureErr(exitCode int, reason string) *Error {
	return &Error{Kind: EncoderFailure, Message: reason, ExitCode: exitCode}
}

// ExternalToolContractErr builds an ExternalToolContract error.
func ExternalToolContractErr(reason string) *Error {
	return &Error{Kind: ExternalToolContract, Message: reason}
}

// ExternalToolFailureErr builds an ExternalToolFailure error.
func ExternalToolFailureErr(stderrTail string, exitCode int) *Error {
	return &Error{Kind: ExternalToolFailure, Message: "external tool failed", StderrTl: stderrTail, ExitCode: exitCode}
}

// Unsupportedf builds an Unsupported error with a formatted message.
func Unsupportedf(format string, args ...interface{}) *Error {
	return &Error{Kind: Unsupported, Message: fmt.Sprintf(format, args...)}
}

// CancelledErr builds a Cancelled error.
func CancelledErr() *Error {
	return &Error{Kind: Cancelled, Message: "cancelled"}
}

// IOErrorErr builds an IOError wrapping cause.
func IOErrorErr(message string, cause error) *Error {
	return &Error{Kind: IOError, Message: message, Cause: cause}
}

// OrderingViolationErr builds an OrderingViolation error.
func OrderingViolationErr(message string) *Error {
	return &Error{Kind: OrderingViolation, Message: message}
}
