package engine

import "errors"

var (
	// ErrResourceMissing reports a label or model asset that cannot be opened.
	ErrResourceMissing = errors.New("resource missing")
	// ErrModelLoad reports a model artifact that exists but is empty, truncated or not a
	// format any backend recognizes.
	ErrModelLoad = errors.New("model load failed")
	// ErrInference reports a shape mismatch or a failure inside the engine.
	ErrInference = errors.New("inference failed")
	// ErrUseAfterClose reports a call on a handle that was already released.
	ErrUseAfterClose = errors.New("use after close")
)
