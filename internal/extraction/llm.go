package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kodwo/billminder/internal/completion"
)

// promptTextLimit bounds how much bill text goes into the prompt. Clipping
// keeps the head (provider identity) and tail (totals, due dates) of the
// document and elides the middle.
const promptTextLimit = 8000

// fieldSchema accepts the recovered reply object only if it is shaped like
// the fixed schema. Amounts may arrive as strings; the normalizer coerces
// them later. Stray extra keys are tolerated and ignored downstream.
var fieldSchema = jsonschema.MustCompileString("bill-fields.json", `{
	"type": "object",
	"properties": {
		"provider":       {"type": ["string", "null"]},
		"amount":         {"type": ["number", "string", "null"]},
		"currency":       {"type": ["string", "null"]},
		"due_date":       {"type": ["string", "null"]},
		"account_number": {"type": ["string", "null"]},
		"invoice_number": {"type": ["string", "null"]},
		"period_start":   {"type": ["string", "null"]},
		"period_end":     {"type": ["string", "null"]}
	}
}`)

// ModelExtractor asks a text-completion backend to return the fixed schema as
// JSON and recovers that JSON from a reply that may include extra prose or
// formatting. Transport and parse failures degrade to an empty result; this
// strategy never fails the request.
type ModelExtractor struct {
	completer completion.Completer
}

func NewModelExtractor(completer completion.Completer) *ModelExtractor {
	return &ModelExtractor{completer: completer}
}

func (e *ModelExtractor) Name() string { return "model" }

// Extract prompts the completion backend and parses the reply. A transport
// error is returned for the caller to log; an unparseable reply yields an
// empty map.
func (e *ModelExtractor) Extract(ctx context.Context, text string) (map[string]any, error) {
	reply, err := e.completer.Complete(ctx, buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("completing prompt: %w", err)
	}
	return parseFieldReply(reply), nil
}

func buildPrompt(text string) string {
	keys := strings.Join(schemaKeys, ", ")
	return fmt.Sprintf(`You extract structured fields from bills and invoices. Return **only JSON** (no prose) with these keys:
%s

Rules:
- provider: issuer name (string).
- amount: numeric (e.g., 123.45).
- currency: ISO code if possible (USD, GHS, EUR, GBP, NGN, ZAR) else best guess.
- due_date, period_start, period_end: format YYYY-MM-DD.
- account_number, invoice_number: strings; strip spaces/dashes if not essential.
- If a field is missing, set it to null (but keep the key).
- Do not include any keys other than: %s.

Bill text:
%s`, keys, keys, clipText(text, promptTextLimit))
}

// clipText keeps the first ~60% and last ~30% of text with an elision
// marker in between. Cut points move to rune boundaries so the clip never
// splits a multi-byte character.
func clipText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	head := limit * 6 / 10
	for head > 0 && !utf8.RuneStart(text[head]) {
		head--
	}
	tail := len(text) - limit*3/10
	for tail < len(text) && !utf8.RuneStart(text[tail]) {
		tail++
	}
	return text[:head] + "\n...\n" + text[tail:]
}

// replyEnvelope is the structured reply shape some completion backends
// return: a list of typed content segments.
type replyEnvelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// parseFieldReply recovers the field object from untrusted reply text. Shapes
// are tried in priority order: a structured reply envelope whose text
// segments embed the object, then the raw reply itself, then empty.
func parseFieldReply(reply string) map[string]any {
	var envelope replyEnvelope
	if err := json.Unmarshal([]byte(reply), &envelope); err == nil && len(envelope.Content) > 0 {
		var segments []string
		for _, c := range envelope.Content {
			if c.Type == "text" {
				segments = append(segments, c.Text)
			}
		}
		if fields := extractObject(strings.Join(segments, "\n")); fields != nil {
			return fields
		}
	}
	if fields := extractObject(reply); fields != nil {
		return fields
	}
	return map[string]any{}
}

// extractObject locates the first top-level {...} substring, parses it, and
// validates it against the field schema. Returns nil if no acceptable object
// is present.
func extractObject(text string) map[string]any {
	start := strings.Index(text, "{")
	if start == -1 {
		return nil
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil
	}
	if err := fieldSchema.Validate(v); err != nil {
		return nil
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return fields
}
