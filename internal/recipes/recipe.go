package recipes

// Recipe is the canonical recipe document exchanged with the recipe service.
// Full documents use capitalised field names on the wire, unlike Summary.
type Recipe struct {
	// ID is assigned by the service and travels in the URL, never in the body.
	ID          string   `json:"-"`
	Name        string   `json:"Name"`
	ImagePath   string   `json:"ImagePath"`
	CoreProps   Props    `json:"CoreProps"`
	Ingredients []string `json:"Ingredients"`
	Steps       []string `json:"Steps"`
}

// Summary is one entry of the recipe listing. Listings use lower-case keys.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (r Recipe) Clone() Recipe {
	clone := r
	clone.CoreProps = r.CoreProps.Clone()
	clone.Ingredients = append([]string(nil), r.Ingredients...)
	clone.Steps = append([]string(nil), r.Steps...)
	return clone
}
