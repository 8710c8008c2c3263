package session

import (
	"encoding/json"
	"strings"
)

// IntelligenceRecord holds the artifacts extracted from a scam conversation.
// Each field is a set of strings; order carries no meaning.
type IntelligenceRecord struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// EmptyIntelligence returns a record whose categories encode as empty JSON arrays.
func EmptyIntelligence() IntelligenceRecord {
	return IntelligenceRecord{}.Normalize()
}

// Normalize trims entries, drops blanks and removes duplicates inside each
// category. Nil categories become empty slices.
func (r IntelligenceRecord) Normalize() IntelligenceRecord {
	return IntelligenceRecord{
		BankAccounts:       dedupe(r.BankAccounts),
		UPIIDs:             dedupe(r.UPIIDs),
		PhishingLinks:      dedupe(r.PhishingLinks),
		PhoneNumbers:       dedupe(r.PhoneNumbers),
		SuspiciousKeywords: dedupe(r.SuspiciousKeywords),
	}
}

// Clone copies every category.
func (r IntelligenceRecord) Clone() IntelligenceRecord {
	return IntelligenceRecord{
		BankAccounts:       cloneStrings(r.BankAccounts),
		UPIIDs:             cloneStrings(r.UPIIDs),
		PhishingLinks:      cloneStrings(r.PhishingLinks),
		PhoneNumbers:       cloneStrings(r.PhoneNumbers),
		SuspiciousKeywords: cloneStrings(r.SuspiciousKeywords),
	}
}

// IsEmpty reports whether no category holds an artifact.
func (r IntelligenceRecord) IsEmpty() bool {
	return len(r.BankAccounts) == 0 &&
		len(r.UPIIDs) == 0 &&
		len(r.PhishingLinks) == 0 &&
		len(r.PhoneNumbers) == 0 &&
		len(r.SuspiciousKeywords) == 0
}

// Count returns the total number of artifacts across categories.
func (r IntelligenceRecord) Count() int {
	return len(r.BankAccounts) + len(r.UPIIDs) + len(r.PhishingLinks) + len(r.PhoneNumbers) + len(r.SuspiciousKeywords)
}

// MarshalJSON always emits arrays, never null.
func (r IntelligenceRecord) MarshalJSON() ([]byte, error) {
	type plain IntelligenceRecord
	out := plain(r)
	if out.BankAccounts == nil {
		out.BankAccounts = []string{}
	}
	if out.UPIIDs == nil {
		out.UPIIDs = []string{}
	}
	if out.PhishingLinks == nil {
		out.PhishingLinks = []string{}
	}
	if out.PhoneNumbers == nil {
		out.PhoneNumbers = []string{}
	}
	if out.SuspiciousKeywords == nil {
		out.SuspiciousKeywords = []string{}
	}
	return json.Marshal(out)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
