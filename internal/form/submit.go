package form

import (
	"context"
	"fmt"

	applog "cookbook/internal/log"
)

// Submit validates the document and sends it to the service, creating or
// updating according to the session mode. Validation errors are returned
// before any request is made. The document is never modified, so a failed
// submit can be retried as is.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	recipe, err := s.doc.ToRecipe()
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	s.generation++
	s.lastUsed = s.now()
	s.mu.Unlock()

	outcome := Outcome{Mode: s.mode, ID: s.recipeID}
	switch s.mode {
	case ModeUpdate:
		if err := s.repo.Update(ctx, s.recipeID, recipe); err != nil {
			return Outcome{}, fmt.Errorf("update %s: %w", s.recipeID, err)
		}
	default:
		id, err := s.repo.Create(ctx, recipe)
		if err != nil {
			return Outcome{}, fmt.Errorf("create %q: %w", recipe.Name, err)
		}
		outcome.ID = id
	}

	applog.Info(ctx, "recipe submitted", "form", s.id, "mode", outcome.Mode.String(), "recipe", outcome.ID)
	return outcome, nil
}
