// ABOUTME: Sample payload generator for populating scan history.
// ABOUTME: Uses OpenAI to invent realistic QR payloads, falling back to a static set.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2389/qreader/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// Generator creates sample payloads using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// NewGenerator creates a generator. An empty apiKey selects static data only.
func NewGenerator(apiKey, model string) *Generator {
	g := &Generator{model: model}
	if g.model == "" {
		g.model = "gpt-4o-mini"
	}

	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
		g.useAI = true
		logger.Info("OpenAI API key found, generating payloads with AI", "model", g.model)
	} else {
		logger.Info("No OPENAI_API_KEY found, using static payloads")
	}

	return g
}

// Generate returns the static payloads followed by up to aiCount AI-generated
// ones. AI failures are logged and only the static set is returned.
func (g *Generator) Generate(ctx context.Context, aiCount int) []string {
	payloads := StaticPayloads()
	if !g.useAI || aiCount <= 0 {
		return payloads
	}

	logger.Info("Generating payloads via AI...", "count", aiCount)
	generated, err := g.generatePayloads(ctx, aiCount)
	if err != nil {
		logger.Warn("AI generation failed, using static payloads only", "error", err)
		return payloads
	}

	for _, p := range generated {
		if p = strings.TrimSpace(p); p != "" {
			payloads = append(payloads, p)
		}
	}
	logger.Info("AI generation complete!", "generated", len(generated))
	return payloads
}

func (g *Generator) generatePayloads(ctx context.Context, count int) ([]string, error) {
	prompt := fmt.Sprintf(`Generate %d realistic QR code payloads as they would be printed on posters, business cards and receipts. Include a mix of:
- Web links (http/https) and URLTO: or MEBKM: bookmarks
- mailto: links and MATMSG: e-mails
- tel: numbers and SMSTO:/sms: messages
- MECARD: and BIZCARD: business cards, and a short vCard (BEGIN:VCARD ... END:VCARD)
- TEXT: notes
- A couple of payloads in schemes a phone would not recognise (e.g. WIFI:, geo:)

Return as JSON array of strings, one payload per string. Use \n for line breaks inside vCards.
Use example.com domains and 555 phone numbers.`, count)

	return callOpenAI[[]string](ctx, g.client, g.model, prompt)
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}

// stripCodeFence removes a ```json fence some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
