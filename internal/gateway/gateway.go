package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/scam-honeypot/internal/session"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// FallbackReply is returned whenever a reply cannot be generated.
const FallbackReply = "I am confused, can you explain that again?"

const defaultCallTimeout = 20 * time.Second

// ErrEmptyReply is recorded when the backend answers with blank text.
var ErrEmptyReply = errors.New("gateway: backend returned an empty reply")

// Message is one prior turn handed to the backend as context.
type Message struct {
	Sender string
	Text   string
}

// Classification is the scam verdict for a turn.
type Classification struct {
	IsScam bool
	Reason string
}

// Gateway turns LLM completions into classification, extraction and reply
// results. Every call is isolated: backend errors, timeouts and panics come
// back as a degraded Outcome, never as an error to the caller.
type Gateway struct {
	llm     LLMClient
	timeout time.Duration
	logger  *logging.Logger
	tracer  trace.Tracer
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithCallTimeout bounds each backend call. Zero or negative disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithTracer overrides the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gateway) {
		if tracer != nil {
			g.tracer = tracer
		}
	}
}

// New builds a Gateway over llm. A nil llm behaves like UnavailableLLMClient.
func New(llm LLMClient, logger *logging.Logger, opts ...Option) *Gateway {
	if llm == nil {
		llm = UnavailableLLMClient{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	g := &Gateway{
		llm:     llm,
		timeout: defaultCallTimeout,
		logger:  logger,
		tracer:  otel.Tracer("honeypot.internal.gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Classify decides whether the current message shows scam intent. On failure
// it fails open: not a scam, with the error text as the reason.
func (g *Gateway) Classify(ctx context.Context, text string, history []Message) Outcome[Classification] {
	resp, err := g.complete(ctx, "classify", LLMRequest{
		System:      []string{classifySystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderPrompt(text, history, "Current Message")}},
		MaxTokens:   structuredMaxTokens,
		Temperature: structuredTemperature,
		TopP:        samplingTopP,
		TopK:        samplingTopK,
		JSONMode:    true,
	})
	if err == nil {
		var result Classification
		result, err = parseClassification(resp)
		if err == nil {
			return succeeded(result)
		}
	}
	g.logger.Error("error in scam detection", "error", err)
	return degraded(Classification{IsScam: false, Reason: "Error: " + err.Error()}, err)
}

// ExtractIntelligence pulls financial identifiers, contacts and links out of
// the conversation. On failure it returns an empty record.
func (g *Gateway) ExtractIntelligence(ctx context.Context, text string, history []Message) Outcome[session.IntelligenceRecord] {
	resp, err := g.complete(ctx, "extract", LLMRequest{
		System:      []string{extractSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderPrompt(text, history, "Current Message")}},
		MaxTokens:   structuredMaxTokens,
		Temperature: structuredTemperature,
		TopP:        samplingTopP,
		TopK:        samplingTopK,
		JSONMode:    true,
	})
	if err == nil {
		var record session.IntelligenceRecord
		record, err = parseIntelligence(resp)
		if err == nil {
			return succeeded(record)
		}
	}
	g.logger.Error("error in intelligence extraction", "error", err)
	return degraded(session.EmptyIntelligence(), err)
}

// GenerateResponse writes an engaged-victim reply meant to keep the scammer talking.
func (g *Gateway) GenerateResponse(ctx context.Context, text string, history []Message) Outcome[string] {
	return g.generate(ctx, "generate_victim", victimSystemPrompt, text, history, "Current Message from Scammer")
}

// GenerateNeutralResponse writes a plain, polite reply with no engagement agenda.
func (g *Gateway) GenerateNeutralResponse(ctx context.Context, text string, history []Message) Outcome[string] {
	return g.generate(ctx, "generate_neutral", neutralSystemPrompt, text, history, "Current Message")
}

func (g *Gateway) generate(ctx context.Context, op, system, text string, history []Message, label string) Outcome[string] {
	resp, err := g.complete(ctx, op, LLMRequest{
		System:      []string{system},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: renderPrompt(text, history, label)}},
		MaxTokens:   textMaxTokens,
		Temperature: textTemperature,
		TopP:        samplingTopP,
		TopK:        samplingTopK,
	})
	if err == nil {
		reply := strings.TrimSpace(resp)
		if reply != "" {
			return succeeded(reply)
		}
		err = ErrEmptyReply
	}
	g.logger.Error("error in response generation", "operation", op, "error", err)
	return degraded(FallbackReply, err)
}

func (g *Gateway) complete(ctx context.Context, op string, req LLMRequest) (text string, err error) {
	ctx, span := g.tracer.Start(ctx, "gateway."+op, trace.WithAttributes(attribute.String("gateway.operation", op)))
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway: %s panicked: %v", op, r)
		}
		if err != nil {
			span.RecordError(err)
		}
	}()

	resp, err := g.llm.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("gateway: %s: %w", op, err)
	}
	return resp.Text, nil
}
