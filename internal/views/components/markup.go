package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Markup writes HTML to an io.Writer and keeps the first write error, so a
// component can emit its parts in sequence and check once at the end.
type Markup struct {
	w   io.Writer
	err error
}

// NewMarkup returns a Markup writing to w.
func NewMarkup(w io.Writer) *Markup {
	return &Markup{w: w}
}

// Raw writes s unescaped. Only use it for literal markup.
func (m *Markup) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s escaped for element content or a quoted attribute value.
func (m *Markup) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// URL writes s as an attribute URL. Unsafe schemes are replaced by templ's
// sanitised stand-in.
func (m *Markup) URL(s string) {
	m.Text(string(templ.URL(s)))
}

// Render writes c in place. A nil component writes nothing.
func (m *Markup) Render(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// Err reports the first error seen.
func (m *Markup) Err() error {
	return m.err
}
