package dataset

import (
	"errors"
	"fmt"
)

// ErrMalformedFilename is matched by every *MalformedFilenameError.
var ErrMalformedFilename = errors.New("malformed event filename")

// MalformedFilenameError reports an event file whose name does not carry the
// four leading entities (subject, session, run, task).
type MalformedFilenameError struct {
	Path     string
	Segments int
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("%s: %s: expected at least %d underscore-delimited entities, got %d",
		ErrMalformedFilename, e.Path, requiredSegments, e.Segments)
}

// Is lets errors.Is match ErrMalformedFilename.
func (e *MalformedFilenameError) Is(target error) bool {
	return target == ErrMalformedFilename
}
