// Package ai defines the external AI collaborator interfaces (moderation,
// content enrichment, itinerary suggestions) and clients for them. Failures
// from these services are always mapped to local defaults by callers; they
// never propagate as unhandled faults.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wayfare/internal/models"
)

// ModerationAction gates whether moderated content may be stored.
type ModerationAction string

const (
	// ActionApprove allows the content through.
	ActionApprove ModerationAction = "approve"
	// ActionReview allows the content but flags it for review.
	ActionReview ModerationAction = "review"
	// ActionReject blocks the content from being stored.
	ActionReject ModerationAction = "reject"
)

// ModerationResult is the verdict on a piece of text. Only Action gates the
// calling operation; score and flags are informational.
type ModerationResult struct {
	Score  float64          `json:"score"`
	Flags  []string         `json:"flags"`
	Action ModerationAction `json:"action"`
}

// TripContext describes a trip for the itinerary suggestion service.
type TripContext struct {
	Title       string  `json:"title"`
	Destination string  `json:"destination"`
	Country     string  `json:"country"`
	Days        int     `json:"days"`
	BudgetMin   float64 `json:"budget_min"`
	BudgetMax   float64 `json:"budget_max"`
}

// Moderator screens user-generated text.
type Moderator interface {
	Moderate(ctx context.Context, text string) (*ModerationResult, error)
}

// Enricher derives sentiment and topic metadata for a post at creation time.
type Enricher interface {
	Enrich(ctx context.Context, text, destination string) (*models.Enrichment, error)
}

// Suggester produces non-binding itinerary suggestions for a new trip.
type Suggester interface {
	Suggest(ctx context.Context, trip TripContext) (*models.TripSuggestions, error)
}

// Client talks to the AI gateway over HTTP. A zero BaseURL client returns
// errors immediately, which callers treat as the unavailable branch.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a gateway client. The timeout bounds every call; callers
// rely on it rather than propagating cancellation further.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("ai gateway not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ai gateway call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ai response: %w", err)
	}
	return nil
}

// Moderate implements Moderator.
func (c *Client) Moderate(ctx context.Context, text string) (*ModerationResult, error) {
	var result ModerationResult
	if err := c.post(ctx, "/v1/moderate", map[string]string{"text": text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Enrich implements Enricher.
func (c *Client) Enrich(ctx context.Context, text, destination string) (*models.Enrichment, error) {
	var result models.Enrichment
	payload := map[string]string{"text": text, "destination": destination}
	if err := c.post(ctx, "/v1/enrich", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Suggest implements Suggester.
func (c *Client) Suggest(ctx context.Context, trip TripContext) (*models.TripSuggestions, error) {
	var result models.TripSuggestions
	if err := c.post(ctx, "/v1/itinerary", trip, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DefaultEnrichment is the fixed neutral payload used when enrichment is
// unavailable.
func DefaultEnrichment() models.Enrichment {
	return models.Enrichment{
		Sentiment:            "neutral",
		Topics:               []string{},
		ReadabilityScore:     0.5,
		EngagementPrediction: 0.5,
	}
}
