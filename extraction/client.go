package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sujankapadia/snaplist/models"
)

// Client calls the hosted text-completion service that turns free text into
// the fixed task schema. It performs no retries: capture is user-initiated
// and safe to resubmit, so failures surface immediately.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// rawExtraction is the schema the remote model is instructed to emit.
type rawExtraction struct {
	Title         string `json:"title"`
	Category      string `json:"category"`
	IsNewCategory bool   `json:"isNewCategory"`
	Urgency       string `json:"urgency"`
	DueDate       string `json:"dueDate"`
	Notes         string `json:"notes"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Extract sends rawText plus context to the completion service and returns a
// validated ExtractedTask. The category list (with descriptions) lets the
// model match against user-specific semantics rather than bare names; now is
// the anchor for relative dates like "tomorrow at 3pm".
func (c *Client) Extract(ctx context.Context, rawText string, now time.Time, categories []models.Category) (*models.ExtractedTask, error) {
	if len(strings.TrimSpace(rawText)) < 2 {
		return nil, models.ErrEmptyInput
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(rawText, now, categories)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", models.ErrExtractionTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrExtractionTransport, resp.StatusCode, string(respBody))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", models.ErrMalformedResponse)
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(gen.Candidates[0].Content.Parts[0].Text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}

	return validate(raw)
}

// validate checks every field of the remote payload against the schema
// before anything is allowed to become a Task.
func validate(raw rawExtraction) (*models.ExtractedTask, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", models.ErrMalformedResponse)
	}

	urgency, err := normalizeUrgency(raw.Urgency)
	if err != nil {
		return nil, err
	}

	var dueDate *time.Time
	if raw.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, raw.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad dueDate %q", models.ErrMalformedResponse, raw.DueDate)
		}
		utc := parsed.UTC()
		dueDate = &utc
	}

	return &models.ExtractedTask{
		Title:         strings.TrimSpace(raw.Title),
		Category:      strings.TrimSpace(raw.Category),
		IsNewCategory: raw.IsNewCategory,
		Urgency:       urgency,
		DueDate:       dueDate,
		Notes:         raw.Notes,
	}, nil
}

// normalizeUrgency maps case variants onto the three enumerated values.
// Anything else fails validation; urgency is never stored as free text.
func normalizeUrgency(s string) (models.TaskUrgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return models.UrgencyHigh, nil
	case "medium", "":
		return models.UrgencyMedium, nil
	case "low":
		return models.UrgencyLow, nil
	}
	return "", fmt.Errorf("%w: unknown urgency %q", models.ErrMalformedResponse, s)
}

func buildPrompt(rawText string, now time.Time, categories []models.Category) string {
	var b strings.Builder
	b.WriteString("You convert a personal task note into structured JSON.\n")
	b.WriteString(fmt.Sprintf("Current date and time: %s\n\n", now.Format(time.RFC3339)))

	b.WriteString("The user's existing categories (name: description):\n")
	for _, cat := range categories {
		b.WriteString(fmt.Sprintf("- %s: %s\n", cat.Name, cat.Description))
	}

	b.WriteString("\nRespond with a single JSON object with exactly these fields:\n")
	b.WriteString(`{"title": string, "category": string, "isNewCategory": boolean, "urgency": "High"|"Medium"|"Low", "dueDate": string, "notes": string}` + "\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Pick the best matching existing category and set isNewCategory to false; if none fits, suggest a short new category name and set isNewCategory to true.\n")
	b.WriteString("- Resolve relative dates (\"tomorrow\", \"next friday\") against the current time above and emit dueDate as UTC ISO-8601. When no time of day is given, use 09:00 local time. Emit an empty string when no date is mentioned.\n")
	b.WriteString("- Put anything that is not part of the short title into notes; use an empty string when there is nothing.\n\n")
	b.WriteString("Task note:\n")
	b.WriteString(rawText)
	return b.String()
}
