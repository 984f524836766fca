package fault

import "errors"

var (
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrShapeMismatch is returned when attribute volumes are not co-registered.
	ErrShapeMismatch = errors.New("volume shapes differ")
)
