package agenda

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/plan"
)

// PersistenceError wraps a failure from the store. It is never retried here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// storeErr passes domain lookups through and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, calendar.ErrEntryNotFound),
		errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, plan.ErrItemNotFound):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
