package classifier

import (
	"errors"

	"github.com/krau/scenelens/engine"
)

// ErrInvalidImage reports a frame that cannot be encoded, such as a nil or empty image.
var ErrInvalidImage = errors.New("invalid image")

// Engine errors surfaced unchanged by the pipeline.
var (
	ErrResourceMissing = engine.ErrResourceMissing
	ErrModelLoad       = engine.ErrModelLoad
	ErrInference       = engine.ErrInference
	ErrUseAfterClose   = engine.ErrUseAfterClose
)
