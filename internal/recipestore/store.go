// Package recipestore persists recipes for the reference service.
package recipestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"cookbook/internal/recipes"
	"cookbook/models"
)

// ErrNotFound is returned when no recipe has the requested id.
var ErrNotFound = errors.New("recipe not found")

// ErrNameRequired is returned when a recipe with a blank name is saved.
var ErrNameRequired = errors.New("recipe name is required")

const fallbackID = "recipe"

// Store reads and writes recipes through gorm.
type Store struct {
	db *gorm.DB
}

// New wraps db. The recipe tables must already be migrated.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns every recipe summary ordered by name.
func (s *Store) List(ctx context.Context) ([]recipes.Summary, error) {
	var rows []models.Recipe
	if err := s.db.WithContext(ctx).Select("id", "name").Order("name").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	summaries := make([]recipes.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, recipes.Summary{ID: row.ID, Name: row.Name})
	}
	return summaries, nil
}

// Get loads the recipe id with its ordered children.
func (s *Store) Get(ctx context.Context, id string) (recipes.Recipe, error) {
	row, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return recipes.Recipe{}, err
	}
	return row.ToRecipe(), nil
}

// Create stores recipe under a slug of its name and returns the slug. A
// numeric suffix is added when the slug is already taken. Names with nothing
// to slug are stored under "recipe".
func (s *Store) Create(ctx context.Context, recipe recipes.Recipe) (string, error) {
	if strings.TrimSpace(recipe.Name) == "" {
		return "", ErrNameRequired
	}
	base := Slugify(recipe.Name)
	if base == "" {
		base = fallbackID
	}

	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = freeID(tx, base)
		if err != nil {
			return err
		}
		row := models.NewRecipe(id, recipe)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create recipe %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update replaces the stored recipe id. The id does not change when the
// name does.
func (s *Store) Update(ctx context.Context, id string, recipe recipes.Recipe) error {
	if strings.TrimSpace(recipe.Name) == "" {
		return ErrNameRequired
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.load(tx, id); err != nil {
			return err
		}
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		row := models.NewRecipe(id, recipe)
		if err := tx.Model(&models.Recipe{ID: id}).Updates(map[string]any{
			"name":       row.Name,
			"image_path": row.ImagePath,
		}).Error; err != nil {
			return fmt.Errorf("update recipe %s: %w", id, err)
		}
		if len(row.Ingredients) > 0 {
			if err := tx.Create(&row.Ingredients).Error; err != nil {
				return fmt.Errorf("update recipe %s ingredients: %w", id, err)
			}
		}
		if len(row.Steps) > 0 {
			if err := tx.Create(&row.Steps).Error; err != nil {
				return fmt.Errorf("update recipe %s steps: %w", id, err)
			}
		}
		if len(row.Props) > 0 {
			if err := tx.Create(&row.Props).Error; err != nil {
				return fmt.Errorf("update recipe %s props: %w", id, err)
			}
		}
		return nil
	})
}

// Delete removes the recipe id and its children.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete recipe %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) load(tx *gorm.DB, id string) (models.Recipe, error) {
	var row models.Recipe
	err := tx.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Props", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("load recipe %s: %w", id, err)
	}
	return row, nil
}

func deleteChildren(tx *gorm.DB, id string) error {
	for _, child := range []any{&models.RecipeIngredient{}, &models.RecipeStep{}, &models.RecipeProp{}} {
		if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
			return fmt.Errorf("clear recipe %s rows: %w", id, err)
		}
	}
	return nil
}

func freeID(tx *gorm.DB, base string) (string, error) {
	var taken []string
	if err := tx.Model(&models.Recipe{}).
		Where("id = ? OR id LIKE ?", base, base+"_%").
		Pluck("id", &taken).Error; err != nil {
		return "", fmt.Errorf("check recipe id %s: %w", base, err)
	}
	used := make(map[string]struct{}, len(taken))
	for _, id := range taken {
		used[id] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate, nil
		}
	}
}

// Slugify turns a recipe name into an id: lower case, spaces become
// underscores and anything other than letters, digits, '_' and '-' is
// dropped.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
