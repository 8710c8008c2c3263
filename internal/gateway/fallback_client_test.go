package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

func TestFallbackLLMClient_PrimarySucceeds(t *testing.T) {
	primary := &scriptedLLM{text: "primary"}
	fallback := &scriptedLLM{text: "fallback"}
	client := NewFallbackLLMClient(primary, fallback, logging.New("error"))

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil || resp.Text != "primary" {
		t.Fatalf("expected primary response, got %q err=%v", resp.Text, err)
	}
	if len(fallback.requests) != 0 {
		t.Fatalf("fallback should not be called")
	}
}

func TestFallbackLLMClient_UsesFallback(t *testing.T) {
	client := NewFallbackLLMClient(&scriptedLLM{err: errors.New("down")}, &scriptedLLM{text: "fallback"}, logging.New("error"))

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil || resp.Text != "fallback" {
		t.Fatalf("expected fallback response, got %q err=%v", resp.Text, err)
	}
}

func TestFallbackLLMClient_BothFail(t *testing.T) {
	fallbackErr := errors.New("also down")
	client := NewFallbackLLMClient(&scriptedLLM{err: errors.New("down")}, &scriptedLLM{err: fallbackErr}, logging.New("error"))

	if _, err := client.Complete(context.Background(), LLMRequest{}); !errors.Is(err, fallbackErr) {
		t.Fatalf("expected fallback error, got %v", err)
	}
}

func TestFallbackLLMClient_NoFallback(t *testing.T) {
	primaryErr := errors.New("down")
	client := NewFallbackLLMClient(&scriptedLLM{err: primaryErr}, nil, nil)

	if _, err := client.Complete(context.Background(), LLMRequest{}); !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}

func TestFallbackLLMClient_SkipsFallbackAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fallback := &scriptedLLM{text: "fallback"}
	client := NewFallbackLLMClient(&scriptedLLM{err: context.Canceled}, fallback, logging.New("error"))

	if _, err := client.Complete(ctx, LLMRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if len(fallback.requests) != 0 {
		t.Fatalf("fallback should not run on a cancelled context")
	}
}
