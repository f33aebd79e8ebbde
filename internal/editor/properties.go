package editor

import "cookbook/internal/recipes"

// PropCell is one key/value row of Properties.
type PropCell struct {
	ID    CellID
	Key   string
	Value string
}

// Properties is an ordered sequence of key/value cells backing a recipe's
// core properties. Like List it always holds at least one cell.
type Properties struct {
	cells []PropCell
	ids   sequence
}

// NewProperties returns an editor seeded from props.
func NewProperties(props recipes.Props) *Properties {
	p := &Properties{}
	p.FromMapping(props)
	return p
}

// FromMapping replaces every cell with the entries of props in their order.
// An empty mapping leaves a single empty row.
func (p *Properties) FromMapping(props recipes.Props) {
	p.cells = make([]PropCell, 0, max(len(props), 1))
	for _, prop := range props {
		p.cells = append(p.cells, PropCell{ID: p.ids.next(), Key: prop.Key, Value: prop.Value})
	}
	if len(p.cells) == 0 {
		p.cells = append(p.cells, PropCell{ID: p.ids.next()})
	}
}

// Append adds an empty row at the end and returns its ID.
func (p *Properties) Append() CellID {
	id := p.ids.next()
	p.cells = append(p.cells, PropCell{ID: id})
	return id
}

// Len reports the number of rows.
func (p *Properties) Len() int {
	return len(p.cells)
}

// Cells returns a snapshot of the rows in order.
func (p *Properties) Cells() []PropCell {
	return append([]PropCell(nil), p.cells...)
}

// Index returns the current position of id, or -1.
func (p *Properties) Index(id CellID) int {
	for i, cell := range p.cells {
		if cell.ID == id {
			return i
		}
	}
	return -1
}

// SetKey updates the key of the row identified by id.
func (p *Properties) SetKey(id CellID, key string) bool {
	return p.UpdateKey(p.Index(id), key)
}

// SetValue updates the value of the row identified by id.
func (p *Properties) SetValue(id CellID, value string) bool {
	return p.UpdateValue(p.Index(id), value)
}

// UpdateKey updates the key of the row at index; out of range is a no-op.
func (p *Properties) UpdateKey(index int, key string) bool {
	if index < 0 || index >= len(p.cells) {
		return false
	}
	p.cells[index].Key = key
	return true
}

// UpdateValue updates the value of the row at index; out of range is a no-op.
func (p *Properties) UpdateValue(index int, value string) bool {
	if index < 0 || index >= len(p.cells) {
		return false
	}
	p.cells[index].Value = value
	return true
}

// Remove deletes the row identified by id unless it is the only row.
func (p *Properties) Remove(id CellID) bool {
	return p.RemoveAt(p.Index(id))
}

// RemoveAt deletes the row at index. Removing the only row is a no-op.
func (p *Properties) RemoveAt(index int) bool {
	if len(p.cells) <= 1 || index < 0 || index >= len(p.cells) {
		return false
	}
	p.cells = append(p.cells[:index], p.cells[index+1:]...)
	return true
}

// ToMapping folds the rows left to right into properties. A row counts only
// when both key and value are non-empty; a repeated key overwrites the earlier
// value.
func (p *Properties) ToMapping() recipes.Props {
	out := make(recipes.Props, 0, len(p.cells))
	for _, cell := range p.cells {
		if cell.Key == "" || cell.Value == "" {
			continue
		}
		out.Set(cell.Key, cell.Value)
	}
	return out
}
