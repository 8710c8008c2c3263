package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/scam-honeypot/internal/config"
	"github.com/wolfman30/scam-honeypot/internal/gateway"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// AWSConfigLoader resolves the shared AWS SDK configuration.
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// BuildLLMClient selects the model backend from config. A missing credential
// never fails startup: the returned client reports ErrBackendUnavailable and
// every gateway call degrades to its fallback. The returned closer releases
// backend resources and is never nil.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (gateway.LLMClient, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	useGemini := strings.TrimSpace(cfg.GeminiAPIKey) != ""
	useBedrock := strings.TrimSpace(cfg.BedrockModelID) != ""
	switch cfg.LLMProvider {
	case appconfig.LLMProviderGemini:
		useBedrock = false
		if !useGemini {
			logger.Warn("LLM_PROVIDER=gemini but GEMINI_API_KEY is not set; replies will use fallbacks")
			return gateway.UnavailableLLMClient{Reason: "GEMINI_API_KEY not set"}, noop, nil
		}
	case appconfig.LLMProviderBedrock:
		useGemini = false
		if !useBedrock {
			logger.Warn("LLM_PROVIDER=bedrock but BEDROCK_MODEL_ID is not set; replies will use fallbacks")
			return gateway.UnavailableLLMClient{Reason: "BEDROCK_MODEL_ID not set"}, noop, nil
		}
	}

	var (
		primary, secondary gateway.LLMClient
		closer             = noop
	)
	if useGemini {
		gemini, err := gateway.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, noop, err
		}
		primary = gemini
		closer = gemini.Close
		logger.Info("gemini backend configured", "model", cfg.GeminiModelID)
	}
	if useBedrock {
		if loadAWS == nil {
			return nil, closer, fmt.Errorf("bootstrap: aws config loader is required for bedrock")
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, closer, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		bedrock := gateway.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		logger.Info("bedrock backend configured", "model", cfg.BedrockModelID)
		if primary == nil {
			primary = bedrock
		} else {
			secondary = bedrock
		}
	}

	if primary == nil {
		logger.Warn("no LLM backend configured; replies will use fallbacks")
		return gateway.UnavailableLLMClient{Reason: "no LLM backend configured"}, noop, nil
	}
	if secondary != nil {
		logger.Info("bedrock configured as fallback backend")
		return gateway.NewFallbackLLMClient(primary, secondary, logger), closer, nil
	}
	return primary, closer, nil
}

// BuildGateway wraps the selected backend with the configured call timeout.
func BuildGateway(llm gateway.LLMClient, cfg *appconfig.Config, logger *logging.Logger) *gateway.Gateway {
	var opts []gateway.Option
	if cfg != nil {
		opts = append(opts, gateway.WithCallTimeout(cfg.LLMTimeout))
	}
	return gateway.New(llm, logger, opts...)
}
