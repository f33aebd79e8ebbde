package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// HumanDuration renders an ISO 8601 duration such as "PT1H30M" the way
// recipe sites print it ("1 hr 30 mins"). Anything else is returned as is.
func HumanDuration(value string) string {
	value = strings.TrimSpace(value)
	m := isoDuration.FindStringSubmatch(strings.ToUpper(value))
	if m == nil || value == "P" || strings.HasSuffix(strings.ToUpper(value), "T") {
		return value
	}

	units := []struct {
		raw            string
		single, plural string
	}{
		{m[1], "day", "days"},
		{m[2], "hr", "hrs"},
		{m[3], "min", "mins"},
	}
	var parts []string
	for _, u := range units {
		n, err := strconv.Atoi(u.raw)
		if err != nil || n == 0 {
			continue
		}
		label := u.plural
		if n == 1 {
			label = u.single
		}
		parts = append(parts, strconv.Itoa(n)+" "+label)
	}
	if secs, err := strconv.ParseFloat(m[4], 64); err == nil && secs > 0 && len(parts) == 0 {
		parts = append(parts, strconv.FormatFloat(secs, 'f', -1, 64)+" secs")
	}
	if len(parts) == 0 {
		return "0 mins"
	}
	return strings.Join(parts, " ")
}
