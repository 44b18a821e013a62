package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pressroom/hub/internal/models"
)

// ErrEmptyModerationResponse is returned when the chat response has no message content.
var ErrEmptyModerationResponse = errors.New("ollama: empty moderation response")

const moderationSystemPrompt = `You are a strict but fair content moderator.
Analyze the text and answer ONLY with JSON matching the provided schema.
Rules:
- score: overall probability of problematic content (0.0 = clean, 1.0 = very severe)
- isFlagged: true if score > 0.3 or severe categories are present
- categories: list of detected problems
- reason: short explanation (max 2 sentences)
- confidence: how sure you are of the analysis`

// moderationSchema is the structured-output JSON schema sent as the chat
// "format" field (Ollama >= 0.3.12). The category enum is the closed
// vocabulary in models.ModerationCategories.
var moderationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"isFlagged": map[string]any{"type": "boolean"},
		"score":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"categories": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "enum": models.ModerationCategories},
		},
		"reason":     map[string]any{"type": "string"},
		"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
	},
	"required":             []string{"isFlagged", "score", "categories", "confidence"},
	"additionalProperties": false,
}

// Moderator classifies article content via the Ollama chat API with structured output.
type Moderator struct {
	client *Client
	model  string
}

// NewModerator creates a moderation classifier using the given client and chat model
// (e.g. llama3.2:3b).
func NewModerator(client *Client, model string) *Moderator {
	return &Moderator{client: client, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Format   any           `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Moderate classifies the given title and content and returns the snapshot to
// attach to the article, enriched with model name and timestamp. Transport and
// parse errors are returned as-is; the caller decides how to degrade.
func (m *Moderator) Moderate(ctx context.Context, title, content string) (*models.ModerationResult, error) {
	text := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, content)

	req := chatRequest{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "system", Content: moderationSystemPrompt},
			{Role: "user", Content: text},
		},
		Format: moderationSchema,
		Stream: false,
	}

	var resp chatResponse
	if err := m.client.post(ctx, "/api/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("ollama moderation: %w", err)
	}

	if resp.Message.Content == "" {
		return nil, ErrEmptyModerationResponse
	}

	var verdict models.ModerationVerdict
	if err := json.Unmarshal([]byte(resp.Message.Content), &verdict); err != nil {
		return nil, fmt.Errorf("parse moderation verdict: %w", err)
	}

	return &models.ModerationResult{
		Flagged:     verdict.IsFlagged,
		Score:       verdict.Score,
		Categories:  verdict.Categories,
		Reason:      verdict.Reason,
		Confidence:  verdict.Confidence,
		Model:       m.model,
		ModeratedAt: time.Now(),
	}, nil
}
