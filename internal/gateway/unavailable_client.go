package gateway

import (
	"context"
	"errors"
)

// ErrBackendUnavailable is returned when no model backend is configured.
var ErrBackendUnavailable = errors.New("gateway: model backend unavailable")

// UnavailableLLMClient fails every call. It stands in for a missing
// credential so callers degrade to their fallbacks instead of failing startup.
type UnavailableLLMClient struct {
	Reason string
}

func (c UnavailableLLMClient) Complete(context.Context, LLMRequest) (LLMResponse, error) {
	if c.Reason != "" {
		return LLMResponse{}, errors.Join(ErrBackendUnavailable, errors.New(c.Reason))
	}
	return LLMResponse{}, ErrBackendUnavailable
}
