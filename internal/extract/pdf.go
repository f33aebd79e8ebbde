package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"cookbook/internal/recipes"
)

var (
	stepNumber   = regexp.MustCompile(`^(?i:step\s*)?\d+[.):]?\s+`)
	propertyLine = regexp.MustCompile(`^(?i)(prep time|cook time|total time|additional time|servings|yield)\s*:\s*(.+)$`)
	bulletPrefix = regexp.MustCompile(`^[-*•·▪]\s*`)
)

// FromPDF extracts the text of a PDF and parses it with ParseText.
func FromPDF(data []byte) (recipes.Recipe, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return recipes.Recipe{}, fmt.Errorf("extract: open pdf: %w", err)
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return recipes.Recipe{}, fmt.Errorf("extract: read pdf page %d: %w", i, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return ParseText(builder.String())
}

type section int

const (
	sectionPreamble section = iota
	sectionIngredients
	sectionSteps
)

// ParseText reads a plain-text recipe. The first line is the name; lines
// under an "Ingredients" heading are ingredients and lines under a
// "Directions", "Instructions", "Method" or "Steps" heading are steps.
// "Prep time: 10 mins" style lines anywhere become core properties.
func ParseText(text string) (recipes.Recipe, error) {
	var recipe recipes.Recipe
	current := sectionPreamble

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if next, ok := heading(line); ok {
			current = next
			continue
		}
		if m := propertyLine.FindStringSubmatch(line); m != nil {
			key := strings.ToLower(m[1])
			if key == "yield" {
				key = "servings"
			}
			recipe.CoreProps.Set(key, strings.TrimSpace(m[2]))
			continue
		}

		switch current {
		case sectionPreamble:
			if recipe.Name == "" {
				recipe.Name = line
			}
		case sectionIngredients:
			recipe.Ingredients = append(recipe.Ingredients, bulletPrefix.ReplaceAllString(line, ""))
		case sectionSteps:
			recipe.Steps = append(recipe.Steps, stepNumber.ReplaceAllString(bulletPrefix.ReplaceAllString(line, ""), ""))
		}
	}

	if len(recipe.Ingredients) == 0 && len(recipe.Steps) == 0 {
		return recipes.Recipe{}, ErrNoRecipe
	}
	return recipe, nil
}

func heading(line string) (section, bool) {
	switch strings.ToLower(strings.TrimSuffix(line, ":")) {
	case "ingredients":
		return sectionIngredients, true
	case "directions", "instructions", "method", "steps", "preparation":
		return sectionSteps, true
	}
	return sectionPreamble, false
}
