// Package recipeclient talks to the remote recipe service. Listing fails soft
// and always yields a slice; every other operation returns its error to the
// caller, which owns user-facing reporting. There is no retry or caching.
package recipeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
)

const (
	defaultBaseURL = "http://localhost:26740/api"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Config describes how the Client reaches the recipe service.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin wrapper around the recipe service REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError reports a non-2xx response from the recipe service.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recipeclient: %s: service returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("recipeclient: %s: service returned status %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// NewClient builds a Client from cfg, applying defaults for empty fields.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("recipeclient: invalid base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("recipeclient: base url must be http or https, got %q", baseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: httpClient,
	}, nil
}

// List returns the recipe summaries. It never fails: transport errors,
// unexpected statuses and unknown payload shapes all produce an empty slice
// and a log line.
func (c *Client) List(ctx context.Context) []recipes.Summary {
	body, err := c.do(ctx, "list", http.MethodGet, "/recipes", nil)
	if err != nil {
		applog.Error(ctx, "failed to fetch recipes", "error", err)
		return []recipes.Summary{}
	}
	return NormalizeSummaries(body)
}

// NormalizeSummaries accepts either a bare JSON array of summaries or an
// object wrapping that array under "recipes". Anything else yields an empty
// slice.
func NormalizeSummaries(raw []byte) []recipes.Summary {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []recipes.Summary{}
	}

	var list []recipes.Summary
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &list); err != nil {
			applog.Debug(context.Background(), "recipe listing array did not decode", "error", err)
			return []recipes.Summary{}
		}
	case '{':
		var wrapped struct {
			Recipes json.RawMessage `json:"recipes"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			applog.Debug(context.Background(), "recipe listing object did not decode", "error", err)
			return []recipes.Summary{}
		}
		inner := bytes.TrimSpace(wrapped.Recipes)
		if len(inner) == 0 || inner[0] != '[' {
			return []recipes.Summary{}
		}
		if err := json.Unmarshal(inner, &list); err != nil {
			applog.Debug(context.Background(), "wrapped recipe listing did not decode", "error", err)
			return []recipes.Summary{}
		}
	default:
		return []recipes.Summary{}
	}

	if list == nil {
		return []recipes.Summary{}
	}
	return list
}

// Get loads the full recipe document for id.
func (c *Client) Get(ctx context.Context, id string) (recipes.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return recipes.Recipe{}, errors.New("recipeclient: get: recipe id must not be empty")
	}
	body, err := c.do(ctx, "get", http.MethodGet, "/recipes/"+url.PathEscape(id), nil)
	if err != nil {
		return recipes.Recipe{}, err
	}
	recipe, err := decodeRecipe("get", body)
	if err != nil {
		return recipes.Recipe{}, err
	}
	recipe.ID = id
	return recipe, nil
}

// Create stores a new recipe and returns the identifier assigned by the
// service.
func (c *Client) Create(ctx context.Context, recipe recipes.Recipe) (string, error) {
	body, err := c.do(ctx, "create", http.MethodPost, "/recipes", recipe)
	if err != nil {
		return "", err
	}
	return decodeAckID("create", body)
}

// Update replaces the stored recipe id with recipe.
func (c *Client) Update(ctx context.Context, id string, recipe recipes.Recipe) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("recipeclient: update: recipe id must not be empty")
	}
	_, err := c.do(ctx, "update", http.MethodPut, "/recipes/"+url.PathEscape(id), recipe)
	return err
}

// Delete removes the recipe id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("recipeclient: delete: recipe id must not be empty")
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, "/recipes/"+url.PathEscape(id), nil)
	return err
}

// Scrape asks the service to extract a recipe from the page at pageURL. The
// result is not stored.
func (c *Client) Scrape(ctx context.Context, pageURL string) (recipes.Recipe, error) {
	payload := map[string]any{"url": pageURL}
	body, err := c.do(ctx, "scrape", http.MethodPost, "/scrape", payload)
	if err != nil {
		return recipes.Recipe{}, err
	}
	return decodeRecipe("scrape", body)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("recipeclient: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("recipeclient: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	applog.Debug(ctx, "calling recipe service", "op", op, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recipeclient: %s: call service: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recipeclient: %s: read response: %w", op, err)
	}
	return body, nil
}

// errorMessage extracts a readable message from an error body, which may be
// plain text (http.Error) or a JSON object with an "error" member.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	return strings.TrimSpace(string(trimmed))
}

func decodeRecipe(op string, body []byte) (recipes.Recipe, error) {
	var recipe recipes.Recipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		return recipes.Recipe{}, fmt.Errorf("recipeclient: %s: decode recipe: %w", op, err)
	}
	return recipe, nil
}

// decodeAckID reads the identifier from a write acknowledgement. The service
// answers with {"message", "id"}; a body without an id yields "".
func decodeAckID(op string, body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	var ack struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("recipeclient: %s: decode acknowledgement: %w", op, err)
	}
	return ack.ID, nil
}
