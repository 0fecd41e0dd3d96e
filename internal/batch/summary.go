package batch

import "fmt"

// Summary counts the outcome of one run.
type Summary struct {
	Total          int
	WithEmail      int
	WithoutEmail   int
	RasterFailures int
	SkippedFields  int
}

// Text renders the three-line report persisted to the summary file.
func (s Summary) Text() string {
	return fmt.Sprintf("Total call signs processed: %d\nCall signs with email addresses: %d\nCall signs without email addresses: %d",
		s.Total, s.WithEmail, s.WithoutEmail)
}
