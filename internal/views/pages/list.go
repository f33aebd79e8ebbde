package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"cookbook/internal/recipes"
	"cookbook/internal/views/components"
)

// RecipeList renders the recipe index.
func RecipeList(summaries []recipes.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := components.NewMarkup(w)
		m.Raw("\n<h1>Recipes</h1>")
		if len(summaries) == 0 {
			m.Raw("\n<p class=\"placeholder\">No recipes yet. <a href=\"/recipes/new\">Write one</a> or <a href=\"/import\">import one</a>.</p>\n")
			return m.Err()
		}
		m.Raw("\n<ul class=\"recipe-list\">")
		for _, summary := range summaries {
			path := recipePath(summary.ID)
			m.Raw("\n  <li id=\"recipe-")
			m.Text(summary.ID)
			m.Raw("\">\n    <a href=\"")
			m.URL(path)
			m.Raw("\">")
			m.Text(DisplayName(summary.Name))
			m.Raw("</a>\n    <a href=\"")
			m.URL(path + "/edit")
			m.Raw("\">Edit</a>\n    <form method=\"post\" action=\"")
			m.URL(path + "/delete")
			m.Raw("\" class=\"inline\"\n      hx-post=\"")
			m.URL(path + "/delete")
			m.Raw("\" hx-target=\"closest li\" hx-swap=\"outerHTML\"\n      hx-confirm=\"Delete ")
			m.Text(DisplayName(summary.Name))
			m.Raw("?\">\n      <button type=\"submit\">Delete</button>\n    </form>\n  </li>")
		}
		m.Raw("\n</ul>\n")
		return m.Err()
	})
}

// recipePath is the detail page of the recipe id.
func recipePath(id string) string {
	return "/recipes/" + url.PathEscape(id)
}
