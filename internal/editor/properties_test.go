package editor

import (
	"reflect"
	"testing"

	"cookbook/internal/recipes"
)

func propsFromCells(t *testing.T, cells [][2]string) *Properties {
	t.Helper()
	p := NewProperties(nil)
	for i, cell := range cells {
		if i > 0 {
			p.Append()
		}
		p.UpdateKey(i, cell[0])
		p.UpdateValue(i, cell[1])
	}
	return p
}

func TestToMappingLastWriteWins(t *testing.T) {
	t.Parallel()

	p := propsFromCells(t, [][2]string{{"t", "1"}, {"t", "2"}, {"u", "3"}})
	got := p.ToMapping()
	want := recipes.Props{{Key: "t", Value: "2"}, {Key: "u", Value: "3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToMapping() = %+v, want %+v", got, want)
	}
}

func TestToMappingSkipsIncompleteCells(t *testing.T) {
	t.Parallel()

	p := propsFromCells(t, [][2]string{{"", "orphan"}, {"servings", ""}, {"yield", "1 loaf"}})
	got := p.ToMapping()
	want := recipes.Props{{Key: "yield", Value: "1 loaf"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToMapping() = %+v, want %+v", got, want)
	}
}

func TestFromMappingSeedsRowsInOrder(t *testing.T) {
	t.Parallel()

	p := NewProperties(recipes.Props{{Key: "prep", Value: "10m"}, {Key: "cook", Value: "20m"}})
	cells := p.Cells()
	if len(cells) != 2 || cells[0].Key != "prep" || cells[1].Key != "cook" {
		t.Fatalf("unexpected cells %+v", cells)
	}
}

func TestFromMappingEmptySeedsOneRow(t *testing.T) {
	t.Parallel()

	p := NewProperties(recipes.Props{})
	if p.Len() != 1 {
		t.Fatalf("expected one empty row, got %d", p.Len())
	}
	if got := p.ToMapping(); len(got) != 0 {
		t.Fatalf("expected empty mapping, got %+v", got)
	}
}

func TestPropertiesRemoveAtSingleRowIsNoop(t *testing.T) {
	t.Parallel()

	p := NewProperties(recipes.Props{{Key: "a", Value: "b"}})
	if p.RemoveAt(0) {
		t.Fatal("expected removal of the only row to be refused")
	}
	if p.Len() != 1 {
		t.Fatalf("expected length 1, got %d", p.Len())
	}
}

func TestPropertiesIDEditsSurviveRemoval(t *testing.T) {
	t.Parallel()

	p := NewProperties(recipes.Props{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}})
	cells := p.Cells()
	if !p.Remove(cells[0].ID) {
		t.Fatal("expected removal to succeed")
	}
	if !p.SetValue(cells[2].ID, "30") {
		t.Fatal("expected value update by id to succeed")
	}
	if p.SetKey(cells[0].ID, "zombie") {
		t.Fatal("expected update through removed id to fail")
	}

	want := recipes.Props{{Key: "b", Value: "2"}, {Key: "c", Value: "30"}}
	if got := p.ToMapping(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ToMapping() = %+v, want %+v", got, want)
	}
}
