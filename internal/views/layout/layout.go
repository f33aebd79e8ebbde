// Package layout renders the page shell shared by every full-page response.
package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"cookbook/internal/views/components"
)

const (
	headStart = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>`
	headEnd = `</title>
  <script src="https://unpkg.com/htmx.org@2.0.4" defer></script>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; background: #faf7f2; color: #2b2118; }
    header { padding: 1rem 2rem; background: #2b2118; }
    header a { color: #faf7f2; margin-right: 1.5rem; text-decoration: none; }
    main { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
    .notice { padding: .75rem 1rem; border-radius: .375rem; margin-bottom: 1rem; }
    .notice-error { background: #fde8e8; color: #8a1c1c; }
    .notice-success { background: #e6f4ea; color: #1e5631; }
    .row { display: flex; gap: .5rem; margin-bottom: .5rem; }
    .row input, .row textarea { flex: 1; }
    .placeholder { color: #7a6a5a; font-style: italic; }
  </style>
</head>
<body>
<header>
  <nav>
    <a href="/">Recipes</a>
    <a href="/recipes/new">New recipe</a>
    <a href="/import">Import</a>
  </nav>
</header>
<main>
`
	foot = `</main>
</body>
</html>
`
)

// Layout wraps content in the document shell with a title and an optional
// notice above the content.
func Layout(title string, notice components.Notice, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := components.NewMarkup(w)
		m.Raw(headStart)
		m.Text(title)
		m.Raw(headEnd)
		m.Render(ctx, components.Banner(notice))
		m.Render(ctx, content)
		m.Raw(foot)
		return m.Err()
	})
}
