package query

import "errors"

// Phase identifies where a query failed.
type Phase string

const (
	PhaseParse   Phase = "invalid SQL query"
	PhaseBind    Phase = "invalid SQL query"
	PhaseExecute Phase = "query execution failed"
)

// Error is a failure reported by the query engine. Its message carries the
// engine's own description unchanged.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return string(e.Phase) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(phase Phase, err error) error {
	if err == nil {
		return nil
	}
	var qe *Error
	if errors.As(err, &qe) {
		return err
	}
	return &Error{Phase: phase, Err: err}
}

func syntaxError(err error) error    { return wrap(PhaseParse, err) }
func bindError(err error) error      { return wrap(PhaseBind, err) }
func executionError(err error) error { return wrap(PhaseExecute, err) }
