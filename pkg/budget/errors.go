package budget

import "errors"

var (
	ErrNoLoads      = errors.New("no loads configured")
	ErrNoGeneration = errors.New("no generation source configured")
)

// ValidationError is returned when a project can't produce a meaningful
// budget. It wraps one of the Err* sentinels.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid project: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
