// Package components holds the reusable fragments of the web UI: notices and
// the row editors HTMX swaps in after a row is added or removed.
package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"cookbook/internal/editor"
)

// Notice is a one-off message shown above the page content. Kind is
// "error" or "success".
type Notice struct {
	Kind string
	Text string
}

// Banner renders n, or nothing when n has no text.
func Banner(n Notice) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if n.Text == "" {
			return nil
		}
		role := "status"
		if n.Kind == "error" {
			role = "alert"
		}
		m := NewMarkup(w)
		m.Raw(`<div class="notice notice-`)
		m.Text(n.Kind)
		m.Raw(`" role="`)
		m.Raw(role)
		m.Raw(`">`)
		m.Text(n.Text)
		m.Raw(`</div>`)
		return m.Err()
	})
}

var listLabels = map[string][2]string{
	"ingredients": {"Ingredients", "ingredient"},
	"steps":       {"Steps", "step"},
}

// CellID formats a cell id for field names and routes.
func CellID(id editor.CellID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ListEditor renders the rows of an ingredient or step editor. The remove
// buttons are left out while only one row remains.
func ListEditor(formID, list string, cells []editor.Cell) templ.Component {
	labels, ok := listLabels[list]
	if !ok {
		labels = [2]string{list, "row"}
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		target := "#" + list + "-editor"
		m := NewMarkup(w)
		m.Raw("\n<section id=\"")
		m.Text(list + "-editor")
		m.Raw("\" class=\"row-editor\">\n  <h2>")
		m.Text(labels[0])
		m.Raw("</h2>\n  <ol>")
		for _, cell := range cells {
			name := list + "." + CellID(cell.ID)
			m.Raw("\n    <li class=\"row\" id=\"")
			m.Text(list + "-" + CellID(cell.ID))
			m.Raw("\">")
			if list == "steps" {
				m.Raw("\n      <textarea name=\"")
				m.Text(name)
				m.Raw("\" rows=\"2\">")
				m.Text(cell.Text)
				m.Raw("</textarea>")
			} else {
				m.Raw("\n      <input type=\"text\" name=\"")
				m.Text(name)
				m.Raw("\" value=\"")
				m.Text(cell.Text)
				m.Raw("\">")
			}
			if len(cells) > 1 {
				rowButton(m, "row-remove", "/form/"+formID+"/"+list+"/"+CellID(cell.ID)+"/remove", target, "Remove")
			}
			m.Raw("\n    </li>")
		}
		m.Raw("\n  </ol>")
		rowButton(m, "row-append", "/form/"+formID+"/"+list+"/append", target, "Add "+labels[1])
		m.Raw("\n</section>")
		return m.Err()
	})
}

// PropEditor renders the core property rows.
func PropEditor(formID string, cells []editor.PropCell) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := NewMarkup(w)
		m.Raw("\n<section id=\"props-editor\" class=\"row-editor\">\n  <h2>Details</h2>\n  <ul>")
		for _, cell := range cells {
			id := CellID(cell.ID)
			m.Raw("\n    <li class=\"row\" id=\"props-")
			m.Text(id)
			m.Raw("\">\n      <input type=\"text\" name=\"props.")
			m.Text(id)
			m.Raw(".key\" value=\"")
			m.Text(cell.Key)
			m.Raw("\" placeholder=\"e.g. prep time\">\n      <input type=\"text\" name=\"props.")
			m.Text(id)
			m.Raw(".value\" value=\"")
			m.Text(cell.Value)
			m.Raw("\" placeholder=\"e.g. 10 mins\">")
			if len(cells) > 1 {
				rowButton(m, "row-remove", "/form/"+formID+"/props/"+id+"/remove", "#props-editor", "Remove")
			}
			m.Raw("\n    </li>")
		}
		m.Raw("\n  </ul>")
		rowButton(m, "row-append", "/form/"+formID+"/props/append", "#props-editor", "Add detail")
		m.Raw("\n</section>")
		return m.Err()
	})
}

// rowButton writes a button that posts the enclosing form to action, or
// swaps target with the response under HTMX. Row buttons skip validation so
// a blank required name does not block editing the rows.
func rowButton(m *Markup, class, action, target, label string) {
	m.Raw("\n  <button type=\"submit\" class=\"")
	m.Text(class)
	m.Raw("\" formnovalidate\n    formaction=\"")
	m.URL(action)
	m.Raw("\" formmethod=\"post\"\n    hx-post=\"")
	m.URL(action)
	m.Raw("\"\n    hx-target=\"")
	m.Text(target)
	m.Raw("\" hx-swap=\"outerHTML\">")
	m.Text(label)
	m.Raw("</button>")
}
