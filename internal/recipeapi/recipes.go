package recipeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
	"cookbook/internal/recipestore"
)

type ack struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type scrapeRequest struct {
	URL  string `json:"url"`
	Save bool   `json:"save"`
}

func (a *api) listRecipes(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.store.List(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to read recipes")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (a *api) getRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	recipe, err := a.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(r.Context(), w, "Failed to read recipe", id, err)
		return
	}
	writeJSON(w, http.StatusOK, withSlices(recipe))
}

func (a *api) createRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, ok := decodeRecipe(w, r)
	if !ok {
		return
	}
	id, err := a.store.Create(r.Context(), recipe)
	if err != nil {
		writeStoreError(r.Context(), w, "Failed to save recipe", "", err)
		return
	}
	applog.Info(r.Context(), "recipe created", "recipe", id)
	writeJSON(w, http.StatusCreated, ack{Message: "Recipe created successfully", ID: id})
}

func (a *api) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	recipe, ok := decodeRecipe(w, r)
	if !ok {
		return
	}
	if err := a.store.Update(r.Context(), id, recipe); err != nil {
		writeStoreError(r.Context(), w, "Failed to update recipe", id, err)
		return
	}
	applog.Info(r.Context(), "recipe updated", "recipe", id)
	writeJSON(w, http.StatusOK, ack{Message: "Recipe updated successfully", ID: id})
}

func (a *api) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.store.Delete(r.Context(), id); err != nil {
		writeStoreError(r.Context(), w, "Failed to delete recipe", id, err)
		return
	}
	applog.Info(r.Context(), "recipe deleted", "recipe", id)
	writeJSON(w, http.StatusOK, ack{Message: "Recipe deleted successfully", ID: id})
}

func (a *api) scrapeRecipe(w http.ResponseWriter, r *http.Request) {
	if a.scraper == nil {
		writeJSONError(w, http.StatusNotImplemented, "Scraping is not configured")
		return
	}

	var req scrapeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSONError(w, http.StatusBadRequest, "Recipe url is required")
		return
	}

	recipe, err := a.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		applog.Error(r.Context(), "failed to scrape recipe", "url", req.URL, "error", err)
		writeJSONError(w, http.StatusBadRequest, "Failed to scrape recipe: "+err.Error())
		return
	}

	if req.Save {
		id, err := a.store.Create(r.Context(), recipe)
		if err != nil {
			writeStoreError(r.Context(), w, "Failed to save recipe", "", err)
			return
		}
		applog.Info(r.Context(), "scraped recipe saved", "recipe", id, "url", req.URL)
		w.Header().Set("Location", "/api/recipes/"+id)
	}
	writeJSON(w, http.StatusOK, withSlices(recipe))
}

func decodeRecipe(w http.ResponseWriter, r *http.Request) (recipes.Recipe, bool) {
	var recipe recipes.Recipe
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON format")
		return recipes.Recipe{}, false
	}
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "Recipe name is required")
		return recipes.Recipe{}, false
	}
	return recipe, true
}

func writeStoreError(ctx context.Context, w http.ResponseWriter, message, id string, err error) {
	switch {
	case errors.Is(err, recipestore.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, recipestore.ErrNameRequired):
		writeJSONError(w, http.StatusBadRequest, "Recipe name is required")
	default:
		applog.Error(ctx, message, "recipe", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, message)
	}
}

// withSlices makes absent lists encode as [] rather than null.
func withSlices(recipe recipes.Recipe) recipes.Recipe {
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}
	return recipe
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
