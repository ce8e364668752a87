package preprocess

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is returned by Resolve when no preprocessor claims the
	// source. It is not a failure: the caller should load the source as is.
	ErrNoMatch = errors.New("no preprocessor matches source")

	// ErrEmptyResult is wrapped when a preprocessor returns neither a
	// result nor an error.
	ErrEmptyResult = errors.New("preprocessor returned no result")

	// ErrNotBase64 is wrapped when an inline payload is not base64 encoded.
	ErrNotBase64 = errors.New("payload is not base64 encoded")

	// ErrNotImage is wrapped when decoded content is not an image.
	ErrNotImage = errors.New("content is not an image")
)

// Error reports a failed Process call of the preprocessor that matched URI.
type Error struct {
	Preprocessor string
	URI          string
	Err          error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocess %s (%s): %v", e.URI, e.Preprocessor, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
