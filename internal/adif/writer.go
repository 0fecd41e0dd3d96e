package adif

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatField renders a single <NAME:LEN>value declaration.
func FormatField(name, value string) string {
	return "<" + strings.ToUpper(name) + ":" + strconv.Itoa(utf8.RuneCountInString(value)) + ">" + value
}

// FormatRecord renders a record terminated by <EOR>. Fields are written in
// name order so output is stable.
func FormatRecord(record Record) string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(FormatField(name, record[name]))
		b.WriteByte(' ')
	}
	b.WriteString(RecordEnd)
	b.WriteByte('\n')
	return b.String()
}

// FormatDocument renders a header line followed by every record.
func FormatDocument(header string, records []Record) string {
	var b strings.Builder
	if header = strings.TrimSpace(header); header != "" {
		b.WriteString(header)
		b.WriteByte('\n')
	}
	b.WriteString(HeaderEnd)
	b.WriteByte('\n')
	for _, record := range records {
		b.WriteString(FormatRecord(record))
	}
	return b.String()
}
