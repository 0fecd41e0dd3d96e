package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// attrString renders v without quoting.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// formatValue renders v for a key=value line, quoting text that would
// otherwise break the line apart. Addresses and error messages usually do.
func formatValue(v slog.Value) string {
	s := attrString(v)
	switch v.Resolve().Kind() {
	case slog.KindString, slog.KindAny:
		if s == "" || strings.ContainsAny(s, "=\"") || strings.IndexFunc(s, isSpaceOrControl) >= 0 {
			return strconv.Quote(s)
		}
	}
	return s
}

func isSpaceOrControl(r rune) bool {
	return r <= ' '
}
