package extraction

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a generator call belongs to.
type Stage string

const (
	StageJobDescription Stage = "jd-extraction"
	StageResume         Stage = "resume-extraction"
	StageScoring        Stage = "scoring"
)

var (
	// ErrInvalidOutput marks a generator response that could not be parsed or
	// failed validation. It is recovered once by retrying.
	ErrInvalidOutput = errors.New("invalid generator output")
	// ErrFailed matches every *FailedError.
	ErrFailed = errors.New("extraction failed")
)

// FailedError is returned when both attempts produced invalid output.
type FailedError struct {
	Stage Stage
	// Raw is the last response received from the generator.
	Raw string
	Err error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s: invalid JSON after retry: %v", e.Stage, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

func (e *FailedError) Is(target error) bool { return target == ErrFailed }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOutput, fmt.Sprintf(format, args...))
}
