package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"agentic-nlu/internal/models"
)

// classificationSystemPrompt fixes the intent taxonomy and output contract
// for the reasoning tier. The disambiguation notes encode the rules the
// fast tier most often gets wrong on Hinglish input.
const classificationSystemPrompt = `You are the intent classifier for a food delivery assistant. Users write in English, Hindi or Hinglish (romanized Hindi).

Classify the message into exactly one of these intents:
- greeting: hello/hi/namaste openers with no other request
- order_food: wants food ordered or delivered ("bhej do", "mangwa do", "i am hungry")
- track_order: asks where an existing order is ("mera order kahan hai")
- cancel_order: wants an existing order cancelled
- menu_inquiry: asks what is available, prices, or whether an item exists ("do you have cold coffee" is menu_inquiry, not order_food)
- chitchat: small talk, and questions about the assistant itself ("what can you do", "tum kaun ho" are chitchat, not help)
- help: explicitly asks for assistance using the service
- goodbye: closing the conversation
- unknown: none of the above fits

Rules:
- "do" at the end of a Hindi imperative ("bhej do") is a helper verb, never the number 2.
- A question about availability is menu_inquiry even when food is named.
- If two intents genuinely apply, pick the primary one and list the rest in multi_intent.
- If the message is too ambiguous to act on, set clarification_needed true and offer 2-3 clarification_options.

Respond with ONLY a JSON object, no markdown fences, no prose:
{"intent": "...", "confidence": 0.0-1.0, "entities": {}, "reasoning": "one sentence", "clarification_needed": false, "clarification_options": null, "multi_intent": null}`

// buildClassificationMessages assembles the user turn: recent conversation
// lines, the fast tier's guess as a reference signal, then the message.
func buildClassificationMessages(text string, fast *models.ClassificationResult, history []string) (string, string) {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, line := range history {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if fast != nil {
		fmt.Fprintf(&b, "A fast statistical classifier guessed intent=%q with confidence %.2f. Treat it as a hint, not ground truth.\n\n",
			fast.Intent, fast.Confidence)
	}

	b.WriteString("Message: ")
	b.WriteString(text)

	return classificationSystemPrompt, b.String()
}

// agenticPayload is the reasoning tier's JSON contract.
type agenticPayload struct {
	Intent               string                 `json:"intent"`
	Confidence           float64                `json:"confidence"`
	Entities             map[string]interface{} `json:"entities"`
	Reasoning            string                 `json:"reasoning"`
	ClarificationNeeded  bool                   `json:"clarification_needed"`
	ClarificationOptions []string               `json:"clarification_options"`
	MultiIntent          []string               `json:"multi_intent"`
}

// parseAgenticResponse decodes the reasoning tier's output, tolerating
// markdown fences and surrounding prose.
func parseAgenticResponse(raw string) (*agenticPayload, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in agentic response")
	}

	var payload agenticPayload
	if err := json.Unmarshal([]byte(s[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("agentic response decode: %w", err)
	}
	if payload.Intent == "" {
		return nil, fmt.Errorf("agentic response missing intent")
	}
	return &payload, nil
}
