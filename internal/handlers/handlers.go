package handlers

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"cookbook/internal/form"
	applog "cookbook/internal/log"
	"cookbook/internal/recipes"
	"cookbook/internal/views/components"
	"cookbook/internal/views/layout"
)

const (
	sessionOwnerKey       = "form:owner"
	sessionPlaceholderKey = "form:placeholder"
	sessionErrorKey       = "flash:error"
	sessionSuccessKey     = "flash:success"
)

// RecipeService is the remote recipe service as the web UI sees it.
type RecipeService interface {
	form.Repository
	List(ctx context.Context) []recipes.Summary
	Delete(ctx context.Context, id string) error
}

var (
	sessionManager *scs.SessionManager
	service        RecipeService
	forms          *form.Registry
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, svc RecipeService, registry *form.Registry) {
	sessionManager = sm
	service = svc
	forms = registry
}

// owner identifies the browser session a form belongs to, minting an id on
// first use.
func owner(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	ctx := r.Context()
	id := sessionManager.GetString(ctx, sessionOwnerKey)
	if id == "" {
		id = uuid.NewString()
		sessionManager.Put(ctx, sessionOwnerKey, id)
	}
	return id
}

func flashError(r *http.Request, text string) {
	if sessionManager != nil {
		sessionManager.Put(r.Context(), sessionErrorKey, text)
	}
}

func flashSuccess(r *http.Request, text string) {
	if sessionManager != nil {
		sessionManager.Put(r.Context(), sessionSuccessKey, text)
	}
}

func popNotice(r *http.Request) components.Notice {
	if sessionManager == nil {
		return components.Notice{}
	}
	ctx := r.Context()
	if text := sessionManager.PopString(ctx, sessionErrorKey); text != "" {
		sessionManager.Remove(ctx, sessionSuccessKey)
		return components.Notice{Kind: "error", Text: text}
	}
	if text := sessionManager.PopString(ctx, sessionSuccessKey); text != "" {
		return components.Notice{Kind: "success", Text: text}
	}
	return components.Notice{}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, title string, content templ.Component) {
	renderComponent(w, r, status, layout.Layout(title, popNotice(r), content))
}

func renderComponent(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render page", "path", r.URL.Path, "error", err)
	}
}

// redirect sends the browser to target, using HX-Redirect for HTMX requests
// so the whole page is replaced.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func servicesReady(w http.ResponseWriter) bool {
	if service == nil || forms == nil {
		http.Error(w, "recipe service not available", http.StatusServiceUnavailable)
		return false
	}
	return true
}
