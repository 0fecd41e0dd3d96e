package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer wraps csv.Writer for a single manifest file.
type Writer struct {
	csv     *csv.Writer
	columns []string
}

// NewWriter creates a Writer that writes CSV rows with the given header to w.
func NewWriter(w io.Writer, columns []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), columns: columns}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(w.columns)
}

// Write writes one record, which must match the header width.
func (w *Writer) Write(record []string) error {
	if len(record) != len(w.columns) {
		return fmt.Errorf("manifest row has %d columns, want %d", len(record), len(w.columns))
	}
	return w.csv.Write(record)
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from a previous Write or Flush.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Paths names the three manifest files.
type Paths struct {
	NoEmail   string
	WithEmail string
	All       string
}

// Set owns the three manifest files for one run. Rows are flushed after every
// Add so earlier rows survive a later failure.
type Set struct {
	paths     Paths
	files     []*os.File
	noEmail   *Writer
	withEmail *Writer
	all       *Writer
	rows      []Row
}

// Create truncates the manifest files and writes their headers.
func Create(paths Paths) (*Set, error) {
	set := &Set{paths: paths}
	var err error
	if set.noEmail, err = set.open(paths.NoEmail, NoEmailColumns); err != nil {
		_ = set.Close()
		return nil, err
	}
	if set.withEmail, err = set.open(paths.WithEmail, WithEmailColumns); err != nil {
		_ = set.Close()
		return nil, err
	}
	if set.all, err = set.open(paths.All, AllColumns); err != nil {
		_ = set.Close()
		return nil, err
	}
	return set, nil
}

func (s *Set) open(path string, columns []string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create manifest %s: %w", path, err)
	}
	s.files = append(s.files, file)
	w := NewWriter(file, columns)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return w, nil
}

// Paths returns the manifest locations.
func (s *Set) Paths() Paths {
	return s.paths
}

// Add routes a row to the no-email or with-email manifest and always to the
// all-outcomes manifest.
func (s *Set) Add(row Row) error {
	if row.HasEmail() {
		if err := s.write(s.withEmail, row.withEmailRecord()); err != nil {
			return fmt.Errorf("with-email manifest: %w", err)
		}
	} else {
		if err := s.write(s.noEmail, row.noEmailRecord()); err != nil {
			return fmt.Errorf("no-email manifest: %w", err)
		}
	}
	if err := s.write(s.all, row.allRecord()); err != nil {
		return fmt.Errorf("all-outcomes manifest: %w", err)
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *Set) write(w *Writer, record []string) error {
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Rows returns every row added so far, in order.
func (s *Set) Rows() []Row {
	return append([]Row(nil), s.rows...)
}

// Close flushes and closes the manifest files.
func (s *Set) Close() error {
	var errs []error
	for _, w := range []*Writer{s.noEmail, s.withEmail, s.all} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.files = nil
	return errors.Join(errs...)
}
