package fieldmap

import (
	"regexp"
	"sort"
	"strings"
)

// PlaceholderPrefix starts every substitution token in a template.
const PlaceholderPrefix = "$VAR_"

var leftoverPattern = regexp.MustCompile(`\$VAR_[A-Z_]+`)

// Option configures Apply.
type Option func(*options)

type options struct {
	escape func(string) string
}

// WithEscaper transforms every formatted value before it is inserted, for
// example to XML-escape values going into SVG markup.
func WithEscaper(escape func(string) string) Option {
	return func(o *options) {
		o.escape = escape
	}
}

// Placeholder returns the template token for a field name.
func Placeholder(field string) string {
	return PlaceholderPrefix + field
}

// Apply returns a copy of tmpl with the record's fields substituted.
//
// Fields are applied longest name first so a token such as $VAR_CALL never
// consumes the prefix of $VAR_CALL_SIGN. Leftover tokens are stripped after
// substitution, including any $VAR_ text that arrived inside a field value.
func Apply(record map[string]string, tmpl string, opts ...Option) string {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	out := tmpl
	for _, field := range orderedFields(record) {
		placeholder := Placeholder(field)
		if !strings.Contains(out, placeholder) {
			continue
		}
		value := record[field]
		if value != "" {
			value = FormatValue(field, value)
			if cfg.escape != nil {
				value = cfg.escape(value)
			}
		}
		out = strings.ReplaceAll(out, placeholder, value)
	}
	return StripPlaceholders(out)
}

// StripPlaceholders removes every remaining $VAR_ token.
func StripPlaceholders(text string) string {
	return leftoverPattern.ReplaceAllLiteralString(text, "")
}

// Placeholders lists the distinct field names referenced by tmpl, in order of
// first appearance.
func Placeholders(tmpl string) []string {
	matches := leftoverPattern.FindAllString(tmpl, -1)
	seen := make(map[string]struct{}, len(matches))
	fields := make([]string, 0, len(matches))
	for _, match := range matches {
		field := strings.TrimPrefix(match, PlaceholderPrefix)
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}
	return fields
}

func orderedFields(record map[string]string) []string {
	fields := make([]string, 0, len(record))
	for field := range record {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		if len(fields[i]) != len(fields[j]) {
			return len(fields[i]) > len(fields[j])
		}
		return fields[i] < fields[j]
	})
	return fields
}
