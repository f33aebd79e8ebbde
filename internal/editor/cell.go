// Package editor holds the row editors behind the recipe form: an ordered list
// of free-text cells and an ordered list of key/value cells.
//
// Every cell receives a CellID when it is created. IDs increase monotonically
// for the life of an editor, including across Reset, so an ID captured before
// a removal or reload can never address a different cell afterwards.
// Positional helpers are kept for callers that only know an index; they are
// resolved against the current sequence at call time.
package editor

import "strings"

// CellID identifies one cell within an editor. The zero value never refers to
// a cell.
type CellID uint64

type sequence struct {
	last CellID
}

func (s *sequence) next() CellID {
	s.last++
	return s.last
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
