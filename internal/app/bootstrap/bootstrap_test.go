package bootstrap

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/wolfman30/scam-honeypot/internal/config"
	"github.com/wolfman30/scam-honeypot/internal/gateway"
	httpmiddleware "github.com/wolfman30/scam-honeypot/internal/http/middleware"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

func staticAWS(context.Context, *appconfig.Config) (aws.Config, error) {
	return aws.Config{Region: "us-east-1"}, nil
}

func TestBuildLLMClientRequiresConfig(t *testing.T) {
	if _, _, err := BuildLLMClient(context.Background(), nil, staticAWS, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildLLMClientWithoutCredentialsIsUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"auto", appconfig.LLMProviderAuto},
		{"gemini", appconfig.LLMProviderGemini},
		{"bedrock", appconfig.LLMProviderBedrock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, closer, err := BuildLLMClient(context.Background(), &appconfig.Config{LLMProvider: tt.provider}, staticAWS, logging.New("error"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if closer == nil || closer() != nil {
				t.Fatalf("expected a no-op closer")
			}
			if _, ok := client.(gateway.UnavailableLLMClient); !ok {
				t.Fatalf("expected UnavailableLLMClient, got %T", client)
			}
			if _, err := client.Complete(context.Background(), gateway.LLMRequest{}); !errors.Is(err, gateway.ErrBackendUnavailable) {
				t.Fatalf("expected ErrBackendUnavailable, got %v", err)
			}
		})
	}
}

func TestBuildLLMClientBedrock(t *testing.T) {
	cfg := &appconfig.Config{LLMProvider: appconfig.LLMProviderAuto, BedrockModelID: "anthropic.claude-3-haiku"}

	client, _, err := BuildLLMClient(context.Background(), cfg, staticAWS, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*gateway.BedrockLLMClient); !ok {
		t.Fatalf("expected BedrockLLMClient, got %T", client)
	}
}

func TestBuildLLMClientBedrockIgnoredWhenGeminiForced(t *testing.T) {
	cfg := &appconfig.Config{LLMProvider: appconfig.LLMProviderGemini, BedrockModelID: "anthropic.claude-3-haiku"}

	client, _, err := BuildLLMClient(context.Background(), cfg, staticAWS, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(gateway.UnavailableLLMClient); !ok {
		t.Fatalf("expected UnavailableLLMClient, got %T", client)
	}
}

func TestBuildLLMClientAWSFailure(t *testing.T) {
	boom := errors.New("no credentials")
	cfg := &appconfig.Config{LLMProvider: appconfig.LLMProviderBedrock, BedrockModelID: "m"}

	_, _, err := BuildLLMClient(context.Background(), cfg, func(context.Context, *appconfig.Config) (aws.Config, error) {
		return aws.Config{}, boom
	}, logging.New("error"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected aws error, got %v", err)
	}
}

func TestBuildGatewayAppliesTimeout(t *testing.T) {
	g := BuildGateway(nil, &appconfig.Config{}, logging.New("error"))
	if g == nil {
		t.Fatalf("expected gateway")
	}
	out := g.Classify(context.Background(), "hello", nil)
	if !out.Degraded() || out.Value.IsScam {
		t.Fatalf("expected fail-open classification, got %+v", out)
	}
}

func TestBuildRedisClient(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client when REDIS_ADDR is unset")
	}

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildRateLimiter(t *testing.T) {
	if limiter := BuildRateLimiter(&appconfig.Config{}, nil, nil); limiter != nil {
		t.Fatalf("expected rate limiting disabled by default")
	}

	limiter := BuildRateLimiter(&appconfig.Config{RateLimitPerMinute: 60, RateLimitBurst: 5}, nil, logging.New("error"))
	memory, ok := limiter.(*httpmiddleware.RateLimiter)
	if !ok {
		t.Fatalf("expected in-memory limiter, got %T", limiter)
	}
	memory.Close()

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()
	limiter = BuildRateLimiter(&appconfig.Config{RateLimitPerMinute: 60}, client, logging.New("error"))
	if _, ok := limiter.(*httpmiddleware.RedisRateLimiter); !ok {
		t.Fatalf("expected redis limiter, got %T", limiter)
	}
}

func TestBuildSessionStore(t *testing.T) {
	if BuildSessionStore(&appconfig.Config{}) == nil {
		t.Fatalf("expected store without ttl")
	}
	if BuildSessionStore(&appconfig.Config{SessionTTL: 1}) == nil {
		t.Fatalf("expected store with ttl")
	}
}

func TestBuildDispatcher(t *testing.T) {
	if _, err := BuildDispatcher(context.Background(), nil, staticAWS, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	d, err := BuildDispatcher(context.Background(), &appconfig.Config{CallbackWorkers: 1}, nil, nil, logging.New("error"))
	if err != nil || d == nil {
		t.Fatalf("expected memory-backed dispatcher, err=%v", err)
	}

	d, err = BuildDispatcher(context.Background(), &appconfig.Config{CallbackQueueURL: "http://localhost:4566/000000000000/callbacks"}, staticAWS, nil, logging.New("error"))
	if err != nil || d == nil {
		t.Fatalf("expected sqs-backed dispatcher, err=%v", err)
	}

	if _, err := BuildDispatcher(context.Background(), &appconfig.Config{CallbackQueueURL: "q"}, nil, nil, nil); err == nil {
		t.Fatalf("expected error without aws loader")
	}
}
