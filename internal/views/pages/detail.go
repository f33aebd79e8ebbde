package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"cookbook/internal/recipes"
	"cookbook/internal/views/components"
)

// RecipeDetail renders one recipe read-only.
func RecipeDetail(recipe recipes.Recipe) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := components.NewMarkup(w)
		m.Raw("\n<article class=\"recipe\">\n  <h1>")
		m.Text(DisplayName(recipe.Name))
		m.Raw("</h1>")
		if recipe.ImagePath != "" {
			m.Raw("\n  <img src=\"")
			m.URL(recipe.ImagePath)
			m.Raw("\" alt=\"")
			m.Text(recipe.Name)
			m.Raw("\" class=\"recipe-image\">")
		}
		if len(recipe.CoreProps) > 0 {
			m.Raw("\n  <dl class=\"recipe-props\">")
			for _, prop := range recipe.CoreProps {
				m.Raw("\n    <dt>")
				m.Text(PropLabel(prop.Key))
				m.Raw("</dt><dd>")
				m.Text(prop.Value)
				m.Raw("</dd>")
			}
			m.Raw("\n  </dl>")
		}
		m.Raw("\n  <h2>Ingredients</h2>")
		textList(m, "ul", recipe.Ingredients, "No ingredients listed.")
		m.Raw("\n  <h2>Steps</h2>")
		textList(m, "ol", recipe.Steps, "No steps listed.")
		m.Raw("\n  <p><a href=\"")
		m.URL(recipePath(recipe.ID) + "/edit")
		m.Raw("\">Edit</a> <a href=\"")
		m.URL("/import?id=" + url.QueryEscape(recipe.ID))
		m.Raw("\">Re-import from a URL</a></p>\n</article>\n")
		return m.Err()
	})
}

func textList(m *components.Markup, tag string, items []string, empty string) {
	if len(items) == 0 {
		m.Raw("\n  <p class=\"placeholder\">")
		m.Text(empty)
		m.Raw("</p>")
		return
	}
	m.Raw("\n  <" + tag + ">")
	for _, item := range items {
		m.Raw("<li>")
		m.Text(item)
		m.Raw("</li>")
	}
	m.Raw("</" + tag + ">")
}

// RecipeUnavailable is shown in place of a recipe whose fetch failed.
func RecipeUnavailable(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := components.NewMarkup(w)
		m.Raw("\n<article class=\"recipe\">\n  <h1>Recipe unavailable</h1>\n  <p class=\"placeholder\">")
		if id != "" {
			m.Text(`The recipe "` + id + `" could not be loaded.`)
		} else {
			m.Raw("The recipe could not be loaded.")
		}
		m.Raw("</p>\n  <p><a href=\"/\">Back to recipes</a></p>\n</article>\n")
		return m.Err()
	})
}
