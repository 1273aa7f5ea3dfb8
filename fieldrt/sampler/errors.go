package sampler

import (
	"fmt"
)

// ImageLoadError reports that a source image could not be fetched or decoded.
// Status carries the HTTP status code when the fetch got a response.
type ImageLoadError struct {
	Source string
	Status int
	Err    error
}

func (e *ImageLoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load image %q: http status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("load image %q: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }
