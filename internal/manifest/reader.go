package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrHeaderMismatch is returned when a manifest header does not match the expected columns.
var ErrHeaderMismatch = errors.New("manifest header mismatch")

// ReadWithEmail loads the rows of a with-email manifest.
func ReadWithEmail(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()
	return DecodeWithEmail(file)
}

// DecodeWithEmail parses with-email manifest CSV from r.
func DecodeWithEmail(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(WithEmailColumns)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty manifest", ErrHeaderMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}
	for i, column := range WithEmailColumns {
		if strings.TrimSpace(header[i]) != column {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, header[i], column)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, Row{
			CallSign: strings.TrimSpace(record[0]),
			Email:    strings.TrimSpace(record[1]),
			PNGPath:  strings.TrimSpace(record[2]),
		})
	}
	return rows, nil
}
