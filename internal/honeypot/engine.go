// Package honeypot runs one conversation turn: it classifies the incoming
// message, keeps per-session scam state, picks a reply persona and triggers
// the one-shot final report.
package honeypot

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/scam-honeypot/internal/callback"
	"github.com/wolfman30/scam-honeypot/internal/gateway"
	"github.com/wolfman30/scam-honeypot/internal/observability/metrics"
	"github.com/wolfman30/scam-honeypot/internal/session"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// Greeting answers a turn whose text is empty.
const Greeting = "Hello! How can I help you?"

// DefaultMinMessagesForCallback is the message count at which a flagged
// session is reported.
const DefaultMinMessagesForCallback = 5

// Persona is the voice a reply was written in.
type Persona string

const (
	PersonaGreeting Persona = "greeting"
	PersonaEngaged  Persona = "engaged"
	PersonaNeutral  Persona = "neutral"
)

// Gateway is the model-backed collaborator. Every call returns a usable value.
type Gateway interface {
	Classify(ctx context.Context, text string, history []gateway.Message) gateway.Outcome[gateway.Classification]
	ExtractIntelligence(ctx context.Context, text string, history []gateway.Message) gateway.Outcome[session.IntelligenceRecord]
	GenerateResponse(ctx context.Context, text string, history []gateway.Message) gateway.Outcome[string]
	GenerateNeutralResponse(ctx context.Context, text string, history []gateway.Message) gateway.Outcome[string]
}

// ReportSubmitter schedules a final report without blocking the caller.
type ReportSubmitter interface {
	Submit(ctx context.Context, report callback.Report)
}

// Reply is the outcome of one processed turn.
type Reply struct {
	Text         string
	Persona      Persona
	ScamDetected bool
	MessageCount int
	Reported     bool
}

// Engine processes turns against a session store.
type Engine struct {
	store     session.Store
	gateway   Gateway
	reports   ReportSubmitter
	logger    *logging.Logger
	metrics   *metrics.HoneypotMetrics
	tracer    trace.Tracer
	threshold int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMinMessagesForCallback overrides the report threshold.
func WithMinMessagesForCallback(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.threshold = n
		}
	}
}

// WithMetrics records per-turn counters.
func WithMetrics(m *metrics.HoneypotMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer overrides the tracer used for turn spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine wires the engine collaborators. reports may be nil, in which case
// reports are logged and dropped.
func NewEngine(store session.Store, gw Gateway, reports ReportSubmitter, logger *logging.Logger, opts ...Option) *Engine {
	if store == nil {
		panic("honeypot: session store cannot be nil")
	}
	if gw == nil {
		panic("honeypot: gateway cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:     store,
		gateway:   gw,
		reports:   reports,
		logger:    logger,
		tracer:    otel.Tracer("honeypot.internal.honeypot"),
		threshold: DefaultMinMessagesForCallback,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process handles one inbound message. It only fails when ctx is already done;
// gateway and store failures degrade the reply instead.
func (e *Engine) Process(ctx context.Context, turn Turn) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	sessionID := session.NormalizeID(turn.SessionID)
	log := e.logger.WithSession(sessionID)

	ctx, span := e.tracer.Start(ctx, "honeypot.process", trace.WithAttributes(attribute.String("honeypot.session_id", sessionID)))
	defer span.End()

	// State changes must land even if the caller disconnects mid-turn.
	storeCtx := context.WithoutCancel(ctx)

	snap, err := e.store.Update(storeCtx, sessionID, func(s *session.Session) error {
		s.MessageCount++
		return nil
	})
	if err != nil {
		log.Error("failed to record message", "error", err)
	}

	text := turn.Message.Text
	if strings.TrimSpace(text) == "" {
		e.metrics.ObserveTurn(string(PersonaGreeting))
		return Reply{Text: Greeting, Persona: PersonaGreeting, ScamDetected: snap.ScamDetected(), MessageCount: snap.MessageCount}, nil
	}
	history := toGatewayHistory(turn.History)

	verdict := e.gateway.Classify(ctx, text, history)
	e.metrics.ObserveClassification(verdict.Value.IsScam, verdict.Degraded())
	if verdict.Degraded() {
		e.metrics.ObserveFallback("classify")
	}
	isScam := verdict.Value.IsScam

	if isScam {
		snap, err = e.store.Update(storeCtx, sessionID, func(s *session.Session) error {
			s.FlagScam()
			return nil
		})
		if err != nil {
			log.Error("failed to flag scam session", "error", err)
		}
	}

	persona := PersonaNeutral
	if isScam || snap.ScamDetected() {
		persona = PersonaEngaged
	}
	span.SetAttributes(attribute.String("honeypot.persona", string(persona)), attribute.Bool("honeypot.is_scam", isScam))

	var (
		reply string
		intel session.IntelligenceRecord
	)
	if persona == PersonaEngaged {
		generated := e.gateway.GenerateResponse(ctx, text, history)
		if generated.Degraded() {
			e.metrics.ObserveFallback("generate_victim")
		}
		extracted := e.gateway.ExtractIntelligence(ctx, text, history)
		if extracted.Degraded() {
			e.metrics.ObserveFallback("extract")
		}
		reply, intel = generated.Value, extracted.Value
	} else {
		generated := e.gateway.GenerateNeutralResponse(ctx, text, history)
		if generated.Degraded() {
			e.metrics.ObserveFallback("generate_neutral")
		}
		reply = generated.Value
	}

	var report *callback.Report
	snap, err = e.store.Update(storeCtx, sessionID, func(s *session.Session) error {
		if persona == PersonaEngaged {
			s.Intelligence = intel.Clone()
		}
		if s.ScamDetected() && s.MessageCount >= e.threshold && s.MarkReported() {
			r := callback.NewReport(s, agentNotes(isScam, verdict.Value.Reason))
			report = &r
		}
		return nil
	})
	if err != nil {
		log.Error("failed to commit turn", "error", err)
	}

	if report != nil {
		log.Info("final report triggered", "total_messages", report.TotalMessagesExchanged)
		if e.reports != nil {
			e.reports.Submit(ctx, *report)
		} else {
			log.Warn("no report submitter configured, dropping final report")
		}
	}

	e.metrics.ObserveTurn(string(persona))
	log.Info("turn processed",
		"persona", persona,
		"is_scam", isScam,
		"scam_detected", snap.ScamDetected(),
		"message_count", snap.MessageCount,
	)

	return Reply{
		Text:         reply,
		Persona:      persona,
		ScamDetected: snap.ScamDetected(),
		MessageCount: snap.MessageCount,
		Reported:     report != nil,
	}, nil
}

func agentNotes(isScam bool, reason string) string {
	if isScam {
		return "Scam detected: " + reason
	}
	return "Scam flagged earlier in session; latest assessment: " + reason
}
