package callback

import (
	"encoding/json"
	"fmt"

	"github.com/wolfman30/scam-honeypot/internal/session"
)

// Report is the final-result payload posted once per scam session.
type Report struct {
	SessionID              string                     `json:"sessionId"`
	ScamDetected           bool                       `json:"scamDetected"`
	TotalMessagesExchanged int                        `json:"totalMessagesExchanged"`
	ExtractedIntelligence  session.IntelligenceRecord `json:"extractedIntelligence"`
	AgentNotes             string                     `json:"agentNotes"`
}

// NewReport snapshots a session into a report. The intelligence record is
// copied so later mutations of the session do not leak into the payload.
func NewReport(s *session.Session, notes string) Report {
	return Report{
		SessionID:              s.ID,
		ScamDetected:           s.ScamDetected(),
		TotalMessagesExchanged: s.MessageCount,
		ExtractedIntelligence:  s.Intelligence.Clone(),
		AgentNotes:             notes,
	}
}

func encodeReport(report Report) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("callback: failed to encode report: %w", err)
	}
	return string(body), nil
}

func decodeReport(body string) (Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return Report{}, fmt.Errorf("callback: failed to decode report: %w", err)
	}
	report.ExtractedIntelligence = report.ExtractedIntelligence.Normalize()
	return report, nil
}
