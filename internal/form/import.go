package form

import (
	"context"
	"fmt"
	"strings"

	applog "cookbook/internal/log"
)

// Import asks the service to scrape pageURL and, if no newer request was
// issued meanwhile, replaces the document with the result. On failure the
// document is left as it was.
func (s *Session) Import(ctx context.Context, pageURL string) error {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return ErrURLRequired
	}
	token, err := s.issue()
	if err != nil {
		return err
	}

	scraped, err := s.repo.Scrape(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("import %s: %w", pageURL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.current(token); err != nil {
		applog.Debug(ctx, "discarding scrape result", "form", s.id, "url", pageURL, "reason", err)
		return err
	}
	s.doc.LoadFrom(scraped)
	return nil
}

// Load seeds an update session from the stored recipe. A failed read leaves
// the empty document in place and is logged; the error is returned so the
// caller can show a placeholder.
func (s *Session) Load(ctx context.Context) error {
	if s.mode != ModeUpdate {
		return nil
	}
	token, err := s.issue()
	if err != nil {
		return err
	}

	recipe, err := s.repo.Get(ctx, s.recipeID)
	if err != nil {
		applog.Error(ctx, "failed to load recipe for editing", "form", s.id, "recipe", s.recipeID, "error", err)
		return fmt.Errorf("load %s: %w", s.recipeID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.current(token); err != nil {
		applog.Debug(ctx, "discarding loaded recipe", "form", s.id, "recipe", s.recipeID, "reason", err)
		return err
	}
	s.doc.LoadFrom(recipe)
	return nil
}
