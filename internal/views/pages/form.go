package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"cookbook/internal/form"
	"cookbook/internal/views/components"
)

// FormView is everything the recipe form page shows.
type FormView struct {
	Snapshot form.Snapshot
	// Placeholder replaces the editors' intro text, for example when the
	// recipe being edited could not be loaded.
	Placeholder string
}

// RecipeForm renders the editing form for one form session. The submit
// button posts the whole form; the row buttons post it to their own
// endpoints so the page also works without HTMX.
func RecipeForm(view FormView) templ.Component {
	snap := view.Snapshot
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/form/" + snap.FormID
		m := components.NewMarkup(w)
		m.Raw("\n<h1>")
		m.Text(FormTitle(snap))
		m.Raw("</h1>")
		if view.Placeholder != "" {
			m.Raw("\n<p class=\"placeholder\">")
			m.Text(view.Placeholder)
			m.Raw("</p>")
		}
		m.Raw("\n<form method=\"post\" action=\"")
		m.URL(base + "/scrape")
		m.Raw("\" class=\"import-box\">\n" +
			"  <label>Import from a URL <input type=\"url\" name=\"url\" placeholder=\"https://www.allrecipes.com/recipe/...\"></label>\n" +
			"  <button type=\"submit\">Import</button>\n</form>\n" +
			"<form id=\"recipe-form\" method=\"post\" action=\"")
		m.URL(base + "/submit")
		m.Raw("\"\n  hx-post=\"")
		m.URL(base + "/fields")
		m.Raw("\" hx-trigger=\"change\" hx-swap=\"none\">\n  <label>Name <input type=\"text\" name=\"name\" value=\"")
		m.Text(snap.Name)
		m.Raw("\" required></label>\n  <label>Image URL <input type=\"url\" name=\"image\" value=\"")
		m.Text(snap.ImagePath)
		m.Raw("\"></label>\n")
		m.Render(ctx, components.PropEditor(snap.FormID, snap.Props))
		m.Render(ctx, components.ListEditor(snap.FormID, "ingredients", snap.Ingredients))
		m.Render(ctx, components.ListEditor(snap.FormID, "steps", snap.Steps))
		m.Raw("\n  <button type=\"submit\" class=\"primary\">")
		if snap.Mode == form.ModeUpdate {
			m.Raw("Save changes")
		} else {
			m.Raw("Create recipe")
		}
		m.Raw("</button>\n</form>\n")
		return m.Err()
	})
}
