package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/scam-honeypot/internal/session"
)

var errNoJSONObject = errors.New("gateway: response did not contain a JSON object")

// extractJSONObject strips Markdown fences and surrounding prose, returning
// the outermost {...} span.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

func parseClassification(text string) (Classification, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return Classification{}, err
	}
	var decoded struct {
		IsScam *bool  `json:"is_scam"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Classification{}, fmt.Errorf("gateway: decode classification: %w", err)
	}
	result := Classification{Reason: strings.TrimSpace(decoded.Reason)}
	if decoded.IsScam != nil {
		result.IsScam = *decoded.IsScam
	}
	if result.Reason == "" {
		result.Reason = "No reason provided"
	}
	return result, nil
}

// parseIntelligence decodes each category on its own so one malformed field
// does not discard the others.
func parseIntelligence(text string) (session.IntelligenceRecord, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return session.EmptyIntelligence(), err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return session.EmptyIntelligence(), fmt.Errorf("gateway: decode intelligence: %w", err)
	}
	record := session.IntelligenceRecord{
		BankAccounts:       decodeStringSet(fields["bankAccounts"]),
		UPIIDs:             decodeStringSet(fields["upiIds"]),
		PhishingLinks:      decodeStringSet(fields["phishingLinks"]),
		PhoneNumbers:       decodeStringSet(fields["phoneNumbers"]),
		SuspiciousKeywords: decodeStringSet(fields["suspiciousKeywords"]),
	}
	return record.Normalize(), nil
}

// decodeStringSet accepts a string array or a single string; anything else is
// empty. Numbers are kept verbatim since account numbers often arrive unquoted.
func decodeStringSet(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil
	}
	switch v := value.(type) {
	case string:
		return []string{v}
	case json.Number:
		return []string{v.String()}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case json.Number:
				out = append(out, s.String())
			}
		}
		return out
	default:
		return nil
	}
}
