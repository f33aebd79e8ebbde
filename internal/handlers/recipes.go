package handlers

import (
	"errors"
	"net/http"
	"net/url"

	applog "cookbook/internal/log"
	"cookbook/internal/recipeclient"
	"cookbook/internal/views/pages"
)

// Home lists the recipes. A failed read renders an empty list.
func Home(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	summaries := service.List(r.Context())
	applog.Debug(r.Context(), "rendering recipe list", "count", len(summaries))
	renderPage(w, r, http.StatusOK, "Recipes", pages.RecipeList(summaries))
}

// RecipeDetail renders one recipe read-only, or a placeholder when it cannot
// be fetched.
func RecipeDetail(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	id := r.PathValue("id")
	recipe, err := service.Get(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if recipeclient.IsNotFound(err) {
			status = http.StatusNotFound
		} else {
			applog.Error(r.Context(), "failed to read recipe", "recipe", id, "error", err)
		}
		renderPage(w, r, status, "Recipe unavailable", pages.RecipeUnavailable(id))
		return
	}
	renderPage(w, r, http.StatusOK, pages.DisplayName(recipe.Name), pages.RecipeDetail(recipe))
}

// DeleteRecipe removes a recipe. HTMX callers get an empty body on success so
// the row can be swapped out; failures reload the list with an error notice.
func DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	id := r.PathValue("id")
	if err := service.Delete(r.Context(), id); err != nil {
		applog.Error(r.Context(), "failed to delete recipe", "recipe", id, "error", err)
		flashError(r, failureText("Could not delete the recipe", err))
		redirect(w, r, "/")
		return
	}
	applog.Info(r.Context(), "recipe deleted", "recipe", id)
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	flashSuccess(r, "Recipe deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func recipePath(id string) string {
	if id == "" {
		return "/"
	}
	return "/recipes/" + url.PathEscape(id)
}

// failureText prefixes the service's own message when it sent one.
func failureText(prefix string, err error) string {
	var apiErr *recipeclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return prefix + ": " + apiErr.Message
	}
	return prefix + "."
}
