package formschema

import (
	"fmt"
	"regexp"
	"strings"
)

var reNoIdent = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug derives an option value from its label: lowercase, every run of
// characters other than letters and digits collapsed to one underscore.
func Slug(label string) string {
	slug := strings.ToLower(label)
	slug = reNoIdent.ReplaceAllLiteralString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "option"
	}
	return slug
}

// AssignValues fills missing option values with the slug of their label and
// makes every value unique by suffixing repeats with __n.
func AssignValues(opts []Option) []Option {
	if opts == nil {
		return nil
	}

	out := make([]Option, len(opts))
	seen := make(map[string]int, len(opts))
	for i, o := range opts {
		value := o.Value
		if value == "" {
			value = Slug(o.Label)
		}
		if n := seen[value]; n > 0 {
			candidate := fmt.Sprintf("%s__%d", value, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s__%d", value, n)
			}
			seen[value] = n + 1
			value = candidate
		}
		seen[value]++
		out[i] = Option{Label: o.Label, Value: value}
	}
	return out
}

func defaultOptions() []Option {
	return []Option{
		{Label: "Option 1", Value: "option_1"},
		{Label: "Option 2", Value: "option_2"},
	}
}
