package gateway

import (
	"fmt"
	"strings"
)

// Sampling settings for structured (JSON) and free-text calls.
const (
	structuredTemperature = 0.7
	textTemperature       = 0.9
	samplingTopP          = 0.95
	samplingTopK          = 40
	structuredMaxTokens   = 1024
	textMaxTokens         = 512
)

const classifySystemPrompt = `You are an expert scam detection system. Analyze the message and the conversation history.
Determine if the sender is exhibiting scam intent (phishing, fraud, fake offers, urgency, impersonation of banks or officials, requests for OTPs, payments or credentials).

Return a JSON object with the following fields:
- "is_scam": boolean
- "reason": string (brief explanation)`

const extractSystemPrompt = `Analyze the conversation and extract intelligence about the scammer.

Return a JSON object matching this structure:
{
  "bankAccounts": ["bank account numbers found"],
  "upiIds": ["UPI IDs found"],
  "phishingLinks": ["URLs found"],
  "phoneNumbers": ["phone numbers found"],
  "suspiciousKeywords": ["words or phrases indicating a scam"]
}
Use empty arrays for categories with nothing found.`

const victimSystemPrompt = `You are a gullible but cautious person chatting with a stranger who may be a scammer.
Behave like a real human, for example an elderly or non-technical user. Never reveal that you are an AI or that you suspect a scam.
Keep the conversation going: ask clarifying questions, act slightly confused, and get them to share more details such as account numbers, payment IDs, links or phone numbers.
Reply with the message text only, in one or two short sentences.`

const neutralSystemPrompt = `You are an ordinary person replying to a message from someone you do not know well.
Be polite, brief and natural. Do not share personal or financial details. Never reveal that you are an AI.
Reply with the message text only, in one or two short sentences.`

// renderPrompt formats history and the current message as a single prompt.
func renderPrompt(text string, history []Message, currentLabel string) string {
	var b strings.Builder
	b.WriteString("Conversation History:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, msg := range history {
		sender := strings.TrimSpace(msg.Sender)
		if sender == "" {
			sender = "scammer"
		}
		fmt.Fprintf(&b, "%s: %s\n", sender, strings.TrimSpace(msg.Text))
	}
	fmt.Fprintf(&b, "\n%s:\n%s\n", currentLabel, strings.TrimSpace(text))
	return b.String()
}
