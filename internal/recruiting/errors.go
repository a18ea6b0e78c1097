package recruiting

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

const (
	KindCandidate = "candidate"
	KindJob       = "job"
)

// NotFoundError reports an unknown candidate or job id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func CandidateNotFound(id string) error {
	return &NotFoundError{Kind: KindCandidate, ID: id}
}

func JobNotFound(id string) error {
	return &NotFoundError{Kind: KindJob, ID: id}
}
