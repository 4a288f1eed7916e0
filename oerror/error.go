package oerror

import (
	"errors"
	"fmt"
)

var (
	// ErrGone is returned by a participant query once the participant has left the world or
	// disconnected. A record for a gone participant is always dropped.
	ErrGone = errors.New("participant is gone")
	// ErrUnavailable is returned by a participant query that failed for a transient reason. The
	// caller falls back to the last known value.
	ErrUnavailable = errors.New("query unavailable")
)

type PhaseError struct {
	Err string
}

func New(format string, args ...any) *PhaseError {
	return &PhaseError{Err: fmt.Sprintf(format, args...)}
}

func (e *PhaseError) Error() string {
	return e.Err
}

// QueryError wraps the failure of a single query made against a participant, such as reading its
// velocity or probing the blocks in front of it.
type QueryError struct {
	Query string
	Err   error
}

// Query wraps err into a QueryError for the query name passed. A nil err returns nil.
func Query(query string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) && qe.Query == query {
		return err
	}
	return &QueryError{Query: query, Err: err}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsGone returns true if err reports that the participant queried no longer exists.
func IsGone(err error) bool {
	return errors.Is(err, ErrGone)
}
