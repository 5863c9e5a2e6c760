package pipeline

import "errors"

var (
	// ErrEmptyPipeline is returned when a pipeline reaches execution
	// with no stages.
	ErrEmptyPipeline = errors.New("pipeline has no stages")

	// ErrAlreadyRun is returned by Run when the pipeline has executed
	// before, either through Run or through an armed Close.
	ErrAlreadyRun = errors.New("pipeline already ran")
)

// A SystemError reports a failed controller-side system operation,
// such as creating a pipe or waiting on a stage. Failures inside a
// stage's own process are never a SystemError; they surface through
// the stage's exit status instead.
type SystemError struct {
	Op  string // the operation that failed: "pipe", "wait", ...
	Err error
}

func (e *SystemError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
