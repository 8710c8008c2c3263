package honeypot

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/wolfman30/scam-honeypot/internal/gateway"
	"github.com/wolfman30/scam-honeypot/internal/session"
)

// DefaultSender is assumed when a message does not name its author.
const DefaultSender = "scammer"

// Timestamp accepts RFC3339 strings, naive ISO datetimes or epoch milliseconds.
// Values that cannot be parsed decode to the zero time; the core never reads them.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		t.Time = time.Time{}
		return nil
	}

	var millis json.Number
	if err := json.Unmarshal(data, &millis); err != nil {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := millis.Int64(); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	if ms, err := millis.Float64(); err == nil {
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Message is one conversation turn as supplied by the caller.
type Message struct {
	Sender    string     `json:"sender"`
	Text      string     `json:"text"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
}

// Request is the inbound analyze payload. Every field is optional.
type Request struct {
	SessionID           string         `json:"sessionId"`
	Message             *Message       `json:"message"`
	ConversationHistory []Message      `json:"conversationHistory"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// Turn is a normalized request ready for the engine.
type Turn struct {
	SessionID string
	Message   Message
	History   []Message
	Metadata  map[string]any
}

// Turn applies the request defaults: placeholder session id, scammer sender,
// empty text and empty history.
func (r Request) Turn() Turn {
	var current Message
	if r.Message != nil {
		current = *r.Message
	}
	current.Sender = normalizeSender(current.Sender)

	history := make([]Message, 0, len(r.ConversationHistory))
	for _, msg := range r.ConversationHistory {
		msg.Sender = normalizeSender(msg.Sender)
		history = append(history, msg)
	}

	return Turn{
		SessionID: session.NormalizeID(r.SessionID),
		Message:   current,
		History:   history,
		Metadata:  r.Metadata,
	}
}

func normalizeSender(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return DefaultSender
	}
	return sender
}

func toGatewayHistory(history []Message) []gateway.Message {
	out := make([]gateway.Message, 0, len(history))
	for _, msg := range history {
		out = append(out, gateway.Message{Sender: msg.Sender, Text: msg.Text})
	}
	return out
}
