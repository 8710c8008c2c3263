package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/scam-honeypot/internal/callback"
	appconfig "github.com/wolfman30/scam-honeypot/internal/config"
	"github.com/wolfman30/scam-honeypot/internal/observability/metrics"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// BuildDispatcher wires the callback queue and sender. Reports go through SQS
// when CALLBACK_QUEUE_URL is set and through an in-process channel otherwise.
func BuildDispatcher(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, m *metrics.HoneypotMetrics, logger *logging.Logger) (*callback.Dispatcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var queue callback.Queue
	if url := strings.TrimSpace(cfg.CallbackQueueURL); url != "" {
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: aws config loader is required for sqs")
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		queue = callback.NewSQSQueue(sqs.NewFromConfig(awsCfg), url)
		logger.Info("callback reports routed through sqs", "queue_url", url)
	} else {
		queue = callback.NewMemoryQueue(cfg.CallbackQueueBuffer)
	}

	sender := callback.NewHTTPSender(cfg.CallbackURL, logger, callback.WithTimeout(cfg.CallbackTimeout))
	return callback.NewDispatcher(queue, sender, logger,
		callback.WithWorkerCount(cfg.CallbackWorkers),
		callback.WithMetrics(m),
	), nil
}
