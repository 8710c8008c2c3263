package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// DefaultURL is the evaluation endpoint that receives final results.
const DefaultURL = "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"

const defaultDeliveryTimeout = 5 * time.Second

// Sender delivers one report and reports whether the endpoint accepted it.
type Sender interface {
	Deliver(ctx context.Context, report Report) bool
}

// HTTPSender posts reports as JSON. Failures are logged and never retried.
type HTTPSender struct {
	url        string
	httpClient *http.Client
	logger     *logging.Logger
}

// SenderOption customizes an HTTPSender.
type SenderOption func(*HTTPSender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *HTTPSender) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *HTTPSender) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// NewHTTPSender creates a sender that posts to url (DefaultURL when blank).
func NewHTTPSender(url string, logger *logging.Logger, opts ...SenderOption) *HTTPSender {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &HTTPSender{
		url:        url,
		httpClient: &http.Client{Timeout: defaultDeliveryTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSender) Deliver(ctx context.Context, report Report) bool {
	log := s.logger.WithSession(report.SessionID)

	payload, err := json.Marshal(report)
	if err != nil {
		log.Error("failed to encode callback report", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		log.Error("failed to build callback request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("failed to send final result callback", "error", err)
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("final result callback rejected", "status", resp.StatusCode, "body", string(body))
		return false
	}

	log.Info("final result callback delivered", "status", resp.StatusCode, "total_messages", report.TotalMessagesExchanged)
	return true
}
