package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// ErrUnknownUser means the user's stats row was never provisioned.
	// Distinct from ErrTaskNotFound: it signals a gap upstream, not a
	// bad reference in this request.
	ErrUnknownUser = errors.New("user stats not provisioned")

	// ErrTaskNotFound means a task id does not exist for the user.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDayConflict means the requested day precedes the last processed
	// day. The past is never reprocessed.
	ErrDayConflict = errors.New("day precedes last processed day")

	// ErrStorageUnavailable wraps persistence failures. Retryable by the
	// caller; the engine itself never retries.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports a bad input shape or value. Where possible it is
// applied per item: one malformed task is excluded from the batch, the rest
// of the day's awards still land.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// StorageError marks err as a transient persistence failure while keeping
// the cause inspectable via errors.Is/Unwrap.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
