package catalog

import "errors"

var (
	// ErrStateUnreadable marks persisted state that is present but cannot be
	// decoded. It is recovered locally and only surfaces in logs.
	ErrStateUnreadable = errors.New("catalog: persisted state unreadable")
	// ErrInvalidSubmission is returned by Submit when a candidate fails the
	// presence checks.
	ErrInvalidSubmission = errors.New("catalog: invalid record submission")
)

// SubmissionError carries the blocking violations behind ErrInvalidSubmission.
type SubmissionError struct {
	Fields []string
}

func (e SubmissionError) Error() string {
	return "catalog: invalid record submission"
}

// Unwrap lets errors.Is match ErrInvalidSubmission.
func (e SubmissionError) Unwrap() error { return ErrInvalidSubmission }
