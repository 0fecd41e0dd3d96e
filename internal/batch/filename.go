package batch

import "strings"

// UnknownCallSign names cards for records without a CALL field.
const UnknownCallSign = "unknown"

var fileNameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-",
	"?", "", "\"", "", "<", "", ">", "", "|", "",
)

// FileStem returns the file name stem used for a call sign's card.
func FileStem(callSign string) string {
	stem := strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(callSign)))
	stem = strings.Trim(stem, ".")
	if stem == "" {
		return UnknownCallSign
	}
	return stem
}
