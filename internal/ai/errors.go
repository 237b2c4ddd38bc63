package ai

import "github.com/kiranshivaraju/cvforge/internal/ai/aierrors"

var (
	ErrProviderUnavailable = aierrors.ErrProviderUnavailable
	ErrInferenceTimeout    = aierrors.ErrInferenceTimeout
	ErrInvalidResponse     = aierrors.ErrInvalidResponse
)
