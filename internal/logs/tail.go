package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const pollInterval = 250 * time.Millisecond

// Filter selects log lines. Empty fields match everything.
type Filter struct {
	// Contains is matched case-insensitively against the whole line.
	Contains string
	// CallSign matches lines tagged call_sign=<value>.
	CallSign string
	// RunID matches lines tagged run_id=<value>.
	RunID string
}

// Match reports whether line passes every set criterion.
func (f Filter) Match(line string) bool {
	if f.Contains != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(f.Contains)) {
		return false
	}
	if f.CallSign != "" && !hasField(line, "call_sign", f.CallSign) {
		return false
	}
	if f.RunID != "" && !hasField(line, "run_id", f.RunID) {
		return false
	}
	return true
}

// hasField recognises both the console (key=value) and JSON ("key":"value") encodings.
func hasField(line, key, value string) bool {
	return strings.Contains(line, key+"="+value) ||
		strings.Contains(line, fmt.Sprintf("%q:%q", key, value))
}

// TailResult holds the selected lines and the end offset of the file.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail returns up to limit matching lines from the end of path. A missing
// file yields an empty result. A non-positive limit returns every match.
func Tail(path string, limit int, filter Filter) (TailResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TailResult{}, nil
		}
		return TailResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return TailResult{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return TailResult{}, fmt.Errorf("log path %q is a directory", path)
	}

	var lines []string
	offset, err := scan(file, func(line string) {
		if !filter.Match(line) {
			return
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) > limit {
			lines = lines[1:]
		}
	})
	if err != nil {
		return TailResult{}, err
	}
	return TailResult{Lines: lines, Offset: offset}, nil
}

// Follow streams matching lines appended after offset until ctx is done.
// A truncated file is read again from the start.
func Follow(ctx context.Context, path string, offset int64, filter Filter, emit func(string)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	read, err := scan(file, func(line string) {
		if filter.Match(line) {
			emit(line)
		}
	})
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scan feeds each complete line to fn and returns the number of bytes
// consumed. A trailing partial line is left for the next read.
func scan(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return consumed, nil
		}
		if err != nil {
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		fn(strings.TrimRight(line, "\r\n"))
	}
}
