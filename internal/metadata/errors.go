package metadata

import (
	"errors"
	"fmt"
)

// ErrMissingDescription is matched by every *MissingDescriptionError.
var ErrMissingDescription = errors.New("missing description")

// MissingDescriptionError reports a discovered task that one of the
// description tables does not cover.
type MissingDescriptionError struct {
	Task  string // bare task id, e.g., "prp"
	Table string // "task descriptions" or "column descriptions"
	File  string // event file that referenced the task
}

func (e *MissingDescriptionError) Error() string {
	return fmt.Sprintf("%s: task-%s (from %s) does not exist in the %s", ErrMissingDescription, e.Task, e.File, e.Table)
}

// Is lets errors.Is match ErrMissingDescription.
func (e *MissingDescriptionError) Is(target error) bool {
	return target == ErrMissingDescription
}
