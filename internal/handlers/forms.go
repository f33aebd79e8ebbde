package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"cookbook/internal/document"
	"cookbook/internal/editor"
	"cookbook/internal/form"
	applog "cookbook/internal/log"
	"cookbook/internal/recipeclient"
	"cookbook/internal/views/components"
	"cookbook/internal/views/pages"
)

// NewRecipe opens an empty form in create mode.
func NewRecipe(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	session := forms.Open(owner(r), "")
	http.Redirect(w, r, formPath(session.ID()), http.StatusSeeOther)
}

// EditRecipe opens a form in update mode seeded from the stored recipe.
func EditRecipe(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	openForUpdate(w, r, r.PathValue("id"))
}

// ImportRecipe opens a form for importing. With ?id= the import replaces an
// existing recipe on submit.
func ImportRecipe(w http.ResponseWriter, r *http.Request) {
	if !servicesReady(w) {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		session := forms.Open(owner(r), "")
		http.Redirect(w, r, formPath(session.ID()), http.StatusSeeOther)
		return
	}
	openForUpdate(w, r, id)
}

func openForUpdate(w http.ResponseWriter, r *http.Request, id string) {
	session := forms.Open(owner(r), id)
	if err := session.Load(r.Context()); err != nil && !errors.Is(err, form.ErrStale) {
		if sessionManager != nil {
			sessionManager.Put(r.Context(), sessionPlaceholderKey, "The stored recipe could not be loaded. Saving will overwrite it.")
		}
	}
	http.Redirect(w, r, formPath(session.ID()), http.StatusSeeOther)
}

// FormPage renders an open form.
func FormPage(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	view := pages.FormView{Snapshot: session.Snapshot()}
	if sessionManager != nil {
		view.Placeholder = sessionManager.PopString(r.Context(), sessionPlaceholderKey)
	}
	renderPage(w, r, http.StatusOK, pages.FormTitle(view.Snapshot), pages.RecipeForm(view))
}

// SyncFields copies posted field values into the form without rendering.
func SyncFields(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	if !applyFields(w, r, session) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppendRow adds an empty row to one of the editors.
func AppendRow(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	list := r.PathValue("list")
	if !knownList(list) {
		http.NotFound(w, r)
		return
	}
	if !applyFields(w, r, session) {
		return
	}
	if err := session.Edit(func(doc *document.Document) {
		switch list {
		case "ingredients":
			doc.Ingredients().Append()
		case "steps":
			doc.Steps().Append()
		case "props":
			doc.Props().Append()
		}
	}); err != nil {
		formGone(w, r)
		return
	}
	renderEditor(w, r, session, list)
}

// RemoveRow deletes a row from one of the editors. The last row of an editor
// is kept.
func RemoveRow(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	list := r.PathValue("list")
	cell, err := strconv.ParseUint(r.PathValue("cell"), 10, 64)
	if !knownList(list) || err != nil {
		http.NotFound(w, r)
		return
	}
	if !applyFields(w, r, session) {
		return
	}
	id := editor.CellID(cell)
	if err := session.Edit(func(doc *document.Document) {
		switch list {
		case "ingredients":
			doc.Ingredients().Remove(id)
		case "steps":
			doc.Steps().Remove(id)
		case "props":
			doc.Props().Remove(id)
		}
	}); err != nil {
		formGone(w, r)
		return
	}
	renderEditor(w, r, session, list)
}

// ScrapeIntoForm imports a recipe page into the form. On failure the form is
// left unchanged and the error is shown.
func ScrapeIntoForm(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	pageURL := r.PostForm.Get("url")
	err := session.Import(r.Context(), pageURL)
	switch {
	case err == nil:
		applog.Info(r.Context(), "recipe imported into form", "form", session.ID(), "url", pageURL)
		flashSuccess(r, "Recipe imported. Review it and save.")
	case errors.Is(err, form.ErrURLRequired):
		flashError(r, "Enter a recipe URL to import.")
	case errors.Is(err, form.ErrStale):
	case errors.Is(err, form.ErrClosed):
		formGone(w, r)
		return
	default:
		applog.Error(r.Context(), "failed to import recipe", "form", session.ID(), "url", pageURL, "error", err)
		flashError(r, failureText("Could not import the recipe", err))
	}
	redirect(w, r, formPath(session.ID()))
}

// SubmitForm syncs the posted fields and saves the form. Success closes the
// form and shows the saved recipe; failure keeps the form for another try.
func SubmitForm(w http.ResponseWriter, r *http.Request) {
	session, ok := lookupForm(w, r)
	if !ok {
		return
	}
	if !applyFields(w, r, session) {
		return
	}
	outcome, err := session.Submit(r.Context())
	switch {
	case err == nil:
		forms.Remove(session.ID())
		if outcome.Mode == form.ModeUpdate {
			flashSuccess(r, "Recipe saved.")
		} else {
			flashSuccess(r, "Recipe created.")
		}
		redirect(w, r, recipePath(outcome.ID))
	case errors.Is(err, document.ErrNameRequired):
		flashError(r, "Give the recipe a name before saving.")
		redirect(w, r, formPath(session.ID()))
	case errors.Is(err, form.ErrClosed):
		formGone(w, r)
	case errors.Is(err, form.ErrStale):
		redirect(w, r, formPath(session.ID()))
	default:
		applog.Error(r.Context(), "failed to save recipe", "form", session.ID(), "mode", session.Mode().String(), "error", err)
		flashError(r, failureText("Could not save the recipe", err))
		redirect(w, r, formPath(session.ID()))
	}
}

func lookupForm(w http.ResponseWriter, r *http.Request) (*form.Session, bool) {
	if !servicesReady(w) {
		return nil, false
	}
	session, ok := forms.Lookup(owner(r), r.PathValue("fid"))
	if !ok {
		formGone(w, r)
		return nil, false
	}
	return session, true
}

func formGone(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "form not open", "form", r.PathValue("fid"))
	flashError(r, "That form is no longer open.")
	redirect(w, r, "/")
}

// applyFields copies every recognised input of the posted form into the
// document. Inputs naming rows that no longer exist are ignored.
func applyFields(w http.ResponseWriter, r *http.Request, session *form.Session) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return false
	}
	values := r.PostForm
	if err := session.Edit(func(doc *document.Document) { applyValues(doc, values) }); err != nil {
		formGone(w, r)
		return false
	}
	return true
}

func applyValues(doc *document.Document, values url.Values) {
	for name, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[len(vals)-1]
		switch name {
		case "name":
			doc.SetName(value)
			continue
		case "image":
			doc.SetImagePath(value)
			continue
		}

		list, rest, found := strings.Cut(name, ".")
		if !found {
			continue
		}
		idText, field, _ := strings.Cut(rest, ".")
		raw, err := strconv.ParseUint(idText, 10, 64)
		if err != nil {
			continue
		}
		id := editor.CellID(raw)
		switch {
		case list == "ingredients" && field == "":
			doc.Ingredients().Set(id, value)
		case list == "steps" && field == "":
			doc.Steps().Set(id, value)
		case list == "props" && field == "key":
			doc.Props().SetKey(id, value)
		case list == "props" && field == "value":
			doc.Props().SetValue(id, value)
		}
	}
}

// renderEditor answers a row change: HTMX gets the editor fragment, plain
// form posts go back to the page.
func renderEditor(w http.ResponseWriter, r *http.Request, session *form.Session, list string) {
	if !isHTMX(r) {
		http.Redirect(w, r, formPath(session.ID()), http.StatusSeeOther)
		return
	}
	snap := session.Snapshot()
	var fragment templ.Component
	switch list {
	case "ingredients":
		fragment = components.ListEditor(snap.FormID, list, snap.Ingredients)
	case "steps":
		fragment = components.ListEditor(snap.FormID, list, snap.Steps)
	default:
		fragment = components.PropEditor(snap.FormID, snap.Props)
	}
	renderComponent(w, r, http.StatusOK, fragment)
}

func knownList(list string) bool {
	switch list {
	case "ingredients", "steps", "props":
		return true
	}
	return false
}

func formPath(id string) string {
	return "/form/" + id
}

var _ RecipeService = (*recipeclient.Client)(nil)
