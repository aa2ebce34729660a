package media

import (
	"regexp"
	"strconv"
	"strings"
)

// Date slot values arrive in the voice platform's ISO-8601 flavoured format:
// full dates, months, weeks, weekends, seasons, decades ("201X") and
// placeholders ("XXXX-XX-XX", "PRESENT_REF"). Only the year is of interest.
var (
	// yearPrefixRe matches a leading four digit year followed by an optional suffix.
	yearPrefixRe = regexp.MustCompile(`^(\d{4})(?:$|-)`)

	// decadeRe matches decade values such as "201X".
	decadeRe = regexp.MustCompile(`^(\d{3})X$`)
)

// ParseYear extracts a release year from a date slot value. ok is false when
// the value carries no concrete year.
func ParseYear(value string) (year int, ok bool) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return 0, false
	}

	if m := yearPrefixRe.FindStringSubmatch(v); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil || y == 0 {
			return 0, false
		}
		return y, true
	}

	if m := decadeRe.FindStringSubmatch(v); m != nil {
		d, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return d * 10, true
	}

	return 0, false
}

// BuildQuery appends the year parsed from releaseDate to title.
func BuildQuery(title, releaseDate string) string {
	title = strings.TrimSpace(title)
	if year, ok := ParseYear(releaseDate); ok {
		return title + " " + strconv.Itoa(year)
	}
	return title
}
