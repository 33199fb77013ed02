package bookmark

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means there is no Open anchor with requested name.
	ErrNotFound = errors.New("marker not found")
	// ErrSpanUnresolved means Open anchor exists but its Close anchor could
	// not be found anywhere in the document.
	ErrSpanUnresolved = errors.New("marker span cannot be resolved")
	// ErrBlockCountMismatch is returned when spans of different length are
	// compared.
	ErrBlockCountMismatch = errors.New("marker spans have different block counts")
	// ErrMarkerExists is returned when new marker would duplicate a name.
	ErrMarkerExists = errors.New("marker already exists")
)

// SpliceError is returned when span content could not be replaced.
type SpliceError struct {
	Name string
	ID   string
	Err  error
}

func (e *SpliceError) Error() string {
	return fmt.Sprintf("unable to replace content of marker %q (id %s): %v", e.Name, e.ID, e.Err)
}

func (e *SpliceError) Unwrap() error {
	return e.Err
}

// DuplicationError is returned when new marker could not be inserted.
type DuplicationError struct {
	Reference string
	Name      string
	Err       error
}

func (e *DuplicationError) Error() string {
	return fmt.Sprintf("unable to insert marker %q before %q: %v", e.Name, e.Reference, e.Err)
}

func (e *DuplicationError) Unwrap() error {
	return e.Err
}
