package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStateTransitionsAreForwardOnly(t *testing.T) {
	var s Session
	assert.False(t, s.ScamDetected())
	assert.False(t, s.MarkReported(), "unflagged sessions cannot be reported")
	assert.Equal(t, StateUnclassified, s.State)

	s.FlagScam()
	assert.True(t, s.ScamDetected())
	assert.False(t, s.CallbackSent())

	assert.True(t, s.MarkReported())
	assert.True(t, s.CallbackSent())
	assert.False(t, s.MarkReported(), "latch fires once")

	s.FlagScam()
	assert.Equal(t, StateReported, s.State, "flagging never moves a reported session backwards")
	assert.True(t, s.ScamDetected())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unclassified", StateUnclassified.String())
	assert.Equal(t, "scam_flagged", StateScamFlagged.String())
	assert.Equal(t, "reported", StateReported.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestIntelligenceRecordRoundTrip(t *testing.T) {
	record := IntelligenceRecord{
		BankAccounts:       []string{"1234567890", "9876543210"},
		UPIIDs:             []string{"scammer@okaxis"},
		PhishingLinks:      []string{"http://sbi-kyc-update.example/login"},
		PhoneNumbers:       []string{"+919999999999"},
		SuspiciousKeywords: []string{"urgent", "account blocked", "verify now"},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded IntelligenceRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.ElementsMatch(t, record.BankAccounts, decoded.BankAccounts)
	assert.ElementsMatch(t, record.UPIIDs, decoded.UPIIDs)
	assert.ElementsMatch(t, record.PhishingLinks, decoded.PhishingLinks)
	assert.ElementsMatch(t, record.PhoneNumbers, decoded.PhoneNumbers)
	assert.ElementsMatch(t, record.SuspiciousKeywords, decoded.SuspiciousKeywords)
}

func TestIntelligenceRecordEncodesEmptyArrays(t *testing.T) {
	data, err := json.Marshal(IntelligenceRecord{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bankAccounts":[],"upiIds":[],"phishingLinks":[],"phoneNumbers":[],"suspiciousKeywords":[]}`, string(data))
}

func TestIntelligenceRecordNormalize(t *testing.T) {
	record := IntelligenceRecord{
		UPIIDs:       []string{" fraud@ybl ", "fraud@ybl", ""},
		PhoneNumbers: []string{"+911111111111", "+912222222222", "+911111111111"},
	}.Normalize()

	assert.Equal(t, []string{"fraud@ybl"}, record.UPIIDs)
	assert.Equal(t, []string{"+911111111111", "+912222222222"}, record.PhoneNumbers)
	assert.NotNil(t, record.BankAccounts)
	assert.Equal(t, 3, record.Count())
	assert.False(t, record.IsEmpty())
	assert.True(t, EmptyIntelligence().IsEmpty())
}
