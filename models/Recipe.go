package models

import (
	"sort"
	"time"

	"cookbook/internal/recipes"
)

// Recipe is a stored recipe. The primary key is the slug handed out by the
// service on create.
type Recipe struct {
	ID          string             `gorm:"primaryKey;type:varchar(191)"`
	Name        string             `gorm:"not null"`
	ImagePath   string             `gorm:"type:text"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Steps       []RecipeStep       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Props       []RecipeProp       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient is one ingredient line; Position keeps list order.
type RecipeIngredient struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"index;not null;type:varchar(191)"`
	Position int    `gorm:"not null"`
	Text     string `gorm:"type:text;not null"`
}

// RecipeStep is one method step.
type RecipeStep struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"index;not null;type:varchar(191)"`
	Position int    `gorm:"not null"`
	Text     string `gorm:"type:text;not null"`
}

// RecipeProp is one core property such as prep time or servings.
type RecipeProp struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"index;not null;type:varchar(191)"`
	Position int    `gorm:"not null"`
	Key      string `gorm:"not null"`
	Value    string `gorm:"type:text;not null"`
}

// NewRecipe builds the rows for recipe stored under id.
func NewRecipe(id string, recipe recipes.Recipe) Recipe {
	row := Recipe{
		ID:        id,
		Name:      recipe.Name,
		ImagePath: recipe.ImagePath,
	}
	for i, text := range recipe.Ingredients {
		row.Ingredients = append(row.Ingredients, RecipeIngredient{RecipeID: id, Position: i, Text: text})
	}
	for i, text := range recipe.Steps {
		row.Steps = append(row.Steps, RecipeStep{RecipeID: id, Position: i, Text: text})
	}
	for i, prop := range recipe.CoreProps {
		row.Props = append(row.Props, RecipeProp{RecipeID: id, Position: i, Key: prop.Key, Value: prop.Value})
	}
	return row
}

// ToRecipe converts the stored rows back into a document, ordering children
// by position.
func (r Recipe) ToRecipe() recipes.Recipe {
	ingredients := append([]RecipeIngredient(nil), r.Ingredients...)
	sort.SliceStable(ingredients, func(i, j int) bool { return ingredients[i].Position < ingredients[j].Position })
	steps := append([]RecipeStep(nil), r.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Position < steps[j].Position })
	props := append([]RecipeProp(nil), r.Props...)
	sort.SliceStable(props, func(i, j int) bool { return props[i].Position < props[j].Position })

	out := recipes.Recipe{
		ID:          r.ID,
		Name:        r.Name,
		ImagePath:   r.ImagePath,
		CoreProps:   recipes.Props{},
		Ingredients: make([]string, 0, len(ingredients)),
		Steps:       make([]string, 0, len(steps)),
	}
	for _, ingredient := range ingredients {
		out.Ingredients = append(out.Ingredients, ingredient.Text)
	}
	for _, step := range steps {
		out.Steps = append(out.Steps, step.Text)
	}
	for _, prop := range props {
		out.CoreProps.Set(prop.Key, prop.Value)
	}
	return out
}
