package editor

// Cell is one free-text row of a List.
type Cell struct {
	ID   CellID
	Text string
}

// List is an ordered sequence of text cells that always holds at least one
// cell. It is not safe for concurrent use; the owning form session serialises
// access.
type List struct {
	cells []Cell
	ids   sequence
}

// NewList returns a list seeded with values, or with a single empty cell when
// no values are given.
func NewList(values ...string) *List {
	l := &List{}
	l.Reset(values)
	return l
}

// Reset replaces every cell with values. Previously issued IDs stay retired.
func (l *List) Reset(values []string) {
	l.cells = make([]Cell, 0, max(len(values), 1))
	for _, value := range values {
		l.cells = append(l.cells, Cell{ID: l.ids.next(), Text: value})
	}
	if len(l.cells) == 0 {
		l.cells = append(l.cells, Cell{ID: l.ids.next()})
	}
}

// Append adds an empty cell at the end and returns its ID.
func (l *List) Append() CellID {
	id := l.ids.next()
	l.cells = append(l.cells, Cell{ID: id})
	return id
}

// Len reports the number of cells.
func (l *List) Len() int {
	return len(l.cells)
}

// Cells returns a snapshot of the cells in order.
func (l *List) Cells() []Cell {
	return append([]Cell(nil), l.cells...)
}

// Index returns the current position of id, or -1.
func (l *List) Index(id CellID) int {
	for i, cell := range l.cells {
		if cell.ID == id {
			return i
		}
	}
	return -1
}

// Set replaces the text of the cell identified by id. Unknown IDs are ignored
// and reported as false.
func (l *List) Set(id CellID, text string) bool {
	return l.SetAt(l.Index(id), text)
}

// SetAt replaces the text of the cell at index. Out of range indexes are
// ignored and reported as false.
func (l *List) SetAt(index int, text string) bool {
	if index < 0 || index >= len(l.cells) {
		return false
	}
	l.cells[index].Text = text
	return true
}

// Remove deletes the cell identified by id unless it is the only cell left.
func (l *List) Remove(id CellID) bool {
	return l.RemoveAt(l.Index(id))
}

// RemoveAt deletes the cell at index and shifts later cells down. Removing the
// last remaining cell, or an out of range index, is a no-op.
func (l *List) RemoveAt(index int) bool {
	if len(l.cells) <= 1 || index < 0 || index >= len(l.cells) {
		return false
	}
	l.cells = append(l.cells[:index], l.cells[index+1:]...)
	return true
}

// Values returns the raw cell texts, blanks included.
func (l *List) Values() []string {
	out := make([]string, len(l.cells))
	for i, cell := range l.cells {
		out[i] = cell.Text
	}
	return out
}

// ToSubmission returns the non-blank cell texts in order. The cells
// themselves are left untouched.
func (l *List) ToSubmission() []string {
	out := make([]string, 0, len(l.cells))
	for _, cell := range l.cells {
		if isBlank(cell.Text) {
			continue
		}
		out = append(out, cell.Text)
	}
	return out
}
