package manifest

import "strings"

// Column headers for the three manifests.
var (
	NoEmailColumns   = []string{"CALL_SIGN"}
	WithEmailColumns = []string{"CALL_SIGN", "EMAIL", "PNG_PATH"}
	AllColumns       = []string{"CALL_SIGN", "EMAIL", "PNG_PATH", "ADDRESS", "QTH", "STATE", "ZIP_CODE", "COUNTRY"}
)

// Row is the manifest view of one processed record.
type Row struct {
	CallSign string
	Email    string
	PNGPath  string
	Address  string
	QTH      string
	State    string
	ZipCode  string
	Country  string
}

// HasEmail reports whether the row routes to the with-email manifest.
func (r Row) HasEmail() bool {
	return strings.TrimSpace(r.Email) != ""
}

func (r Row) noEmailRecord() []string {
	return []string{r.CallSign}
}

func (r Row) withEmailRecord() []string {
	return []string{r.CallSign, r.Email, r.PNGPath}
}

func (r Row) allRecord() []string {
	return []string{r.CallSign, r.Email, r.PNGPath, r.Address, r.QTH, r.State, r.ZipCode, r.Country}
}
