// Package document implements the in-memory recipe being edited in one form
// session: scalar fields plus row editors for ingredients, steps and core
// properties.
package document

import (
	"errors"
	"strings"

	"cookbook/internal/editor"
	"cookbook/internal/recipes"
)

// ErrNameRequired is returned by ToRecipe when the recipe has no name.
var ErrNameRequired = errors.New("recipe name is required")

// Document is the editable form state for a single recipe.
type Document struct {
	name        string
	imagePath   string
	ingredients *editor.List
	steps       *editor.List
	props       *editor.Properties
}

// New returns an empty document with one blank row in every editor.
func New() *Document {
	return &Document{
		ingredients: editor.NewList(),
		steps:       editor.NewList(),
		props:       editor.NewProperties(nil),
	}
}

// LoadFrom replaces the whole document with recipe.
func (d *Document) LoadFrom(recipe recipes.Recipe) {
	d.name = recipe.Name
	d.imagePath = recipe.ImagePath
	d.ingredients.Reset(recipe.Ingredients)
	d.steps.Reset(recipe.Steps)
	d.props.FromMapping(recipe.CoreProps)
}

// Name returns the current name as typed.
func (d *Document) Name() string { return d.name }

// ImagePath returns the current image URL as typed.
func (d *Document) ImagePath() string { return d.imagePath }

// SetName updates the recipe name.
func (d *Document) SetName(text string) { d.name = text }

// SetImagePath updates the image URL.
func (d *Document) SetImagePath(text string) { d.imagePath = text }

// Ingredients exposes the ingredient editor.
func (d *Document) Ingredients() *editor.List { return d.ingredients }

// Steps exposes the step editor.
func (d *Document) Steps() *editor.List { return d.steps }

// Props exposes the core property editor.
func (d *Document) Props() *editor.Properties { return d.props }

// ToRecipe materialises the canonical recipe. Blank list cells and incomplete
// property rows are left out; the editors keep them.
func (d *Document) ToRecipe() (recipes.Recipe, error) {
	name := strings.TrimSpace(d.name)
	if name == "" {
		return recipes.Recipe{}, ErrNameRequired
	}
	return recipes.Recipe{
		Name:        name,
		ImagePath:   strings.TrimSpace(d.imagePath),
		CoreProps:   d.props.ToMapping(),
		Ingredients: d.ingredients.ToSubmission(),
		Steps:       d.steps.ToSubmission(),
	}, nil
}
