package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cookbook/internal/recipes"
)

// FromHTML extracts a recipe from an HTML page. base resolves relative image
// links and may be nil.
func FromHTML(r io.Reader, base *url.URL) (recipes.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return recipes.Recipe{}, fmt.Errorf("extract: parse html: %w", err)
	}

	recipe, ok := fromJSONLD(doc)
	if !ok {
		recipe, ok = fromAllRecipes(doc)
	}
	if !ok {
		return recipes.Recipe{}, ErrNoRecipe
	}

	if recipe.Name == "" {
		recipe.Name = metaContent(doc, "og:title")
	}
	if recipe.ImagePath == "" {
		recipe.ImagePath = metaContent(doc, "og:image")
	}
	recipe.ImagePath = resolve(base, recipe.ImagePath)
	return recipe, nil
}

func fromJSONLD(doc *goquery.Document) (recipes.Recipe, bool) {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		found = findRecipeNode(payload)
		return found == nil
	})
	if found == nil {
		return recipes.Recipe{}, false
	}

	recipe := recipes.Recipe{
		Name:        text(found["name"]),
		ImagePath:   image(found["image"]),
		Ingredients: texts(found["recipeIngredient"]),
		Steps:       instructions(found["recipeInstructions"]),
	}
	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = texts(found["ingredients"])
	}
	for _, field := range []struct{ key, prop string }{
		{"prepTime", "prep time"},
		{"cookTime", "cook time"},
		{"totalTime", "total time"},
	} {
		if value := text(found[field.key]); value != "" {
			recipe.CoreProps.Set(field.prop, HumanDuration(value))
		}
	}
	if yield := yieldText(found["recipeYield"]); yield != "" {
		recipe.CoreProps.Set("servings", yield)
	}
	if category := strings.Join(texts(found["recipeCategory"]), ", "); category != "" {
		recipe.CoreProps.Set("category", category)
	}
	if cuisine := strings.Join(texts(found["recipeCuisine"]), ", "); cuisine != "" {
		recipe.CoreProps.Set("cuisine", cuisine)
	}
	return recipe, true
}

func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	for _, t := range texts(v) {
		if strings.EqualFold(t, "Recipe") {
			return true
		}
	}
	return false
}

// text returns v as a string when it is a JSON string or number.
func text(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}

// texts flattens a string or a list of strings.
func texts(v any) []string {
	switch value := v.(type) {
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := text(value); s != "" {
			return []string{s}
		}
	}
	return nil
}

func image(v any) string {
	switch value := v.(type) {
	case []any:
		for _, item := range value {
			if s := image(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return text(value["url"])
	default:
		return text(value)
	}
	return ""
}

func yieldText(v any) string {
	if list, ok := v.([]any); ok {
		for _, item := range list {
			if s := text(item); s != "" {
				return s
			}
		}
		return ""
	}
	return text(v)
}

// instructions flattens recipeInstructions, which may be a block of text,
// a list of strings, HowToStep objects, or HowToSection objects that nest
// further steps.
func instructions(v any) []string {
	switch value := v.(type) {
	case string:
		var out []string
		for _, line := range strings.Split(value, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range value {
			out = append(out, instructions(item)...)
		}
		return out
	case map[string]any:
		if nested, ok := value["itemListElement"]; ok {
			return instructions(nested)
		}
		if s := text(value["text"]); s != "" {
			return []string{s}
		}
		if s := text(value["name"]); s != "" {
			return []string{s}
		}
	}
	return nil
}

func fromAllRecipes(doc *goquery.Document) (recipes.Recipe, bool) {
	var recipe recipes.Recipe
	recipe.Name = strings.TrimSpace(doc.Find("div#article-header--recipe_1-0 h1").First().Text())

	if src, ok := doc.Find("div#photo-dialog__item_1-0 img").First().Attr("src"); ok {
		recipe.ImagePath = src
	}

	doc.Find("div#mm-recipes-details_1-0 div.mm-recipes-details__item").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find("div.mm-recipes-details__label").Text())
		value := strings.TrimSpace(s.Find("div.mm-recipes-details__value").Text())
		switch key := strings.ToLower(strings.TrimSuffix(label, ":")); key {
		case "prep time", "cook time", "total time", "additional time", "servings":
			recipe.CoreProps.Set(key, value)
		}
	})

	doc.Find("div#mm-recipes-structured-ingredients_1-0").Find("ul").First().Find("li").Each(func(_ int, s *goquery.Selection) {
		spans := s.Find("p").First().Find("span")
		var parts []string
		for i := 0; i < 3; i++ {
			if part := strings.TrimSpace(spans.Eq(i).Text()); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			parts = append(parts, strings.TrimSpace(s.Text()))
		}
		recipe.Ingredients = append(recipe.Ingredients, strings.Join(parts, " "))
	})

	doc.Find("div#mm-recipes-steps__content_1-0 ol li").Each(func(_ int, s *goquery.Selection) {
		if step := strings.TrimSpace(s.Find("p").First().Text()); step != "" {
			recipe.Steps = append(recipe.Steps, step)
		}
	})

	found := recipe.Name != "" || len(recipe.Ingredients) > 0 || len(recipe.Steps) > 0
	return recipe, found
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
