// Package aierrors holds the AI sentinel errors in a leaf package so that
// provider subpackages can share them without importing the factory package.
package aierrors

import "errors"

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)
