package adif

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// HeaderEnd terminates the optional ADIF header.
	HeaderEnd = "<EOH>"
	// RecordEnd separates records.
	RecordEnd = "<EOR>"
)

// ErrMalformedDescriptor marks a field descriptor whose length could not be read.
var ErrMalformedDescriptor = errors.New("malformed field descriptor")

// Record maps upper-case field names to their trimmed values.
type Record map[string]string

// Get returns the value for name and whether the field was present.
func (r Record) Get(name string) (string, bool) {
	value, ok := r[strings.ToUpper(name)]
	return value, ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// SkippedField describes a fragment that looked like a field declaration but
// could not be decoded.
type SkippedField struct {
	Record     int
	Descriptor string
	Err        error
}

func (s SkippedField) Error() string {
	return fmt.Sprintf("record %d: field %q: %v", s.Record, s.Descriptor, s.Err)
}

func (s SkippedField) Unwrap() error { return s.Err }

// Result is the outcome of parsing one ADIF document.
type Result struct {
	Records []Record
	Skipped []SkippedField
}

// Read parses ADIF text from r. Only read failures are returned as errors;
// malformed fields are reported in Result.Skipped.
func Read(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read adif: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse splits text into records. Chunks between record separators that hold
// only whitespace produce no record; any other chunk produces one, even when
// none of its fragments decode.
func Parse(text string) Result {
	if _, after, found := cutFold(text, HeaderEnd); found {
		text = after
	}

	var result Result
	for _, chunk := range splitFold(text, RecordEnd) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		index := len(result.Records)
		record, skipped := parseRecord(index, chunk)
		result.Records = append(result.Records, record)
		result.Skipped = append(result.Skipped, skipped...)
	}
	return result
}

func parseRecord(index int, chunk string) (Record, []SkippedField) {
	record := make(Record)
	var skipped []SkippedField
	for _, fragment := range strings.Split(chunk, "<") {
		if !strings.Contains(fragment, ":") || !strings.Contains(fragment, ">") {
			continue
		}
		descriptor, remainder, _ := strings.Cut(fragment, ">")
		name, length, err := parseDescriptor(descriptor)
		if err != nil {
			skipped = append(skipped, SkippedField{Record: index, Descriptor: descriptor, Err: err})
			continue
		}
		record[name] = strings.TrimSpace(takeRunes(remainder, length))
	}
	return record, skipped
}

// parseDescriptor decodes NAME:LENGTH or NAME:LENGTH:TYPE.
func parseDescriptor(descriptor string) (string, int, error) {
	parts := strings.Split(descriptor, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, fmt.Errorf("%w: expected name:length", ErrMalformedDescriptor)
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%w: length %q is not an integer", ErrMalformedDescriptor, parts[1])
	}
	if length < 0 {
		return "", 0, fmt.Errorf("%w: negative length %d", ErrMalformedDescriptor, length)
	}
	return strings.ToUpper(parts[0]), length, nil
}

func takeRunes(value string, n int) string {
	count := 0
	for i := range value {
		if count == n {
			return value[:i]
		}
		count++
	}
	return value
}

func cutFold(s, sep string) (string, string, bool) {
	idx := indexFold(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// indexFold finds an ASCII token regardless of case.
func indexFold(s, sep string) int {
	n := len(sep)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			if upperASCII(s[i+j]) != upperASCII(sep[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func upperASCII(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func splitFold(s, sep string) []string {
	var parts []string
	for {
		before, after, found := cutFold(s, sep)
		parts = append(parts, before)
		if !found {
			return parts
		}
		s = after
	}
}
