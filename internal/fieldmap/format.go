package fieldmap

import "strings"

// FormatValue applies the display rule for a field.
func FormatValue(field, value string) string {
	switch field {
	case "TIME_ON", "TIME_OFF":
		return FormatTime(value)
	case "QSO_DATE":
		return FormatDate(value)
	default:
		return value
	}
}

// FormatTime inserts a colon after every two characters: 143022 -> 14:30:22.
// An odd trailing character is kept as its own group.
func FormatTime(value string) string {
	runes := []rune(value)
	groups := make([]string, 0, (len(runes)+1)/2)
	for i := 0; i < len(runes); i += 2 {
		end := min(i+2, len(runes))
		groups = append(groups, string(runes[i:end]))
	}
	return strings.Join(groups, ":")
}

// FormatDate turns YYYYMMDD into YYYY/MM/DD. Short input yields short or
// empty segments rather than an error.
func FormatDate(value string) string {
	runes := []rune(value)
	return slice(runes, 0, 4) + "/" + slice(runes, 4, 6) + "/" + slice(runes, 6, len(runes))
}

func slice(runes []rune, from, to int) string {
	from = min(from, len(runes))
	to = min(max(to, from), len(runes))
	return string(runes[from:to])
}
