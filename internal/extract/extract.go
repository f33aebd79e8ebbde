// Package extract turns a recipe web page or PDF into a recipe document.
// HTML pages are read from schema.org JSON-LD when present and from
// allrecipes markup otherwise; PDFs are read as plain text and split into
// sections by their headings.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 10 << 20
	userAgent       = "cookbook-extractor/1.0"
)

var (
	// ErrUnsupportedURL is returned for URLs that are not absolute http(s).
	ErrUnsupportedURL = errors.New("extract: url must be absolute http or https")
	// ErrNoRecipe is returned when a page was fetched but held no recipe.
	ErrNoRecipe = errors.New("extract: no recipe found on page")
	// ErrTooLarge is returned when a page exceeds the configured size limit.
	ErrTooLarge = errors.New("extract: page exceeds size limit")
)

// Config bounds the fetches an Extractor makes.
type Config struct {
	Timeout    time.Duration
	MaxBytes   int
	HTTPClient *http.Client
}

// Extractor fetches pages and extracts recipes from them.
type Extractor struct {
	httpClient *http.Client
	maxBytes   int
}

// New builds an Extractor, applying defaults for empty fields.
func New(cfg Config) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Extractor{httpClient: httpClient, maxBytes: maxBytes}
}

// Scrape fetches pageURL and extracts a recipe from it. The result carries
// no id.
func (e *Extractor) Scrape(ctx context.Context, pageURL string) (recipes.Recipe, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return recipes.Recipe{}, ErrUnsupportedURL
	}

	body, contentType, err := e.fetch(ctx, parsed.String())
	if err != nil {
		return recipes.Recipe{}, err
	}

	var recipe recipes.Recipe
	if isPDF(contentType, body) {
		applog.Debug(ctx, "extracting recipe from pdf", "url", parsed.String(), "bytes", len(body))
		recipe, err = FromPDF(body)
	} else {
		applog.Debug(ctx, "extracting recipe from html", "url", parsed.String(), "bytes", len(body))
		recipe, err = FromHTML(bytes.NewReader(body), parsed)
	}
	if err != nil {
		return recipes.Recipe{}, err
	}
	return normalize(recipe), nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("extract: fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("extract: bad status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(e.maxBytes)+1))
	if err != nil {
		return nil, "", fmt.Errorf("extract: read page: %w", err)
	}
	if len(body) > e.maxBytes {
		return nil, "", ErrTooLarge
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func isPDF(contentType string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF-"))
}

// normalize trims every field and drops empty list entries so callers always
// get non-nil slices.
func normalize(recipe recipes.Recipe) recipes.Recipe {
	out := recipes.Recipe{
		Name:        collapseSpace(recipe.Name),
		ImagePath:   strings.TrimSpace(recipe.ImagePath),
		CoreProps:   recipes.Props{},
		Ingredients: []string{},
		Steps:       []string{},
	}
	for _, line := range recipe.Ingredients {
		if line = collapseSpace(line); line != "" {
			out.Ingredients = append(out.Ingredients, line)
		}
	}
	for _, line := range recipe.Steps {
		if line = collapseSpace(line); line != "" {
			out.Steps = append(out.Steps, line)
		}
	}
	for _, prop := range recipe.CoreProps {
		key, value := collapseSpace(prop.Key), collapseSpace(prop.Value)
		if key != "" && value != "" {
			out.CoreProps.Set(key, value)
		}
	}
	return out
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
