package pages

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"cookbook/internal/form"
)

// DisplayName returns the recipe name, or a stand-in when it is blank.
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled recipe"
	}
	return name
}

// PropLabel capitalises a core property key for display ("prep time" becomes
// "Prep time").
func PropLabel(key string) string {
	key = strings.TrimSpace(key)
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// FormTitle names the form page after its submit mode.
func FormTitle(snap form.Snapshot) string {
	if snap.Mode == form.ModeUpdate {
		return "Edit " + DisplayName(snap.Name)
	}
	return "New recipe"
}
