// Package address pulls postal details out of free-text ADIF ADDRESS values.
package address

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var zipPattern = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

var upper = cases.Upper(language.Und)

// Parts holds the pieces recovered from an address.
type Parts struct {
	Address string
	Zip     string
	State   string
	Country string
}

// ExtractZip removes the first US-style zip code (12345 or 12345-6789) from
// address and returns the cleaned address with the code. Without a match the
// address is returned unchanged with an empty code.
func ExtractZip(address string) (string, string) {
	loc := zipPattern.FindStringIndex(address)
	if loc == nil {
		return address, ""
	}
	zip := address[loc[0]:loc[1]]
	cleaned := strings.TrimSpace(address[:loc[0]] + address[loc[1]:])
	return cleaned, zip
}

// ExtractStateAndCountry reads the state from the last word of the
// second-to-last comma-separated part and the country from the last part.
// Addresses with fewer than two parts yield empty strings.
func ExtractStateAndCountry(address string) (string, string) {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return "", ""
	}
	var state string
	if words := strings.Fields(parts[len(parts)-2]); len(words) > 0 {
		state = words[len(words)-1]
	}
	return state, strings.TrimSpace(parts[len(parts)-1])
}

// Decompose runs zip extraction before state and country extraction, since
// the former edits the address the latter splits. The state is upper-cased.
func Decompose(address string) Parts {
	cleaned, zip := ExtractZip(address)
	state, country := ExtractStateAndCountry(cleaned)
	return Parts{
		Address: cleaned,
		Zip:     zip,
		State:   upper.String(state),
		Country: country,
	}
}
