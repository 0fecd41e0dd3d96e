package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qslgen/internal/history"
)

// Sentinel markers classify failures so callers can pick a ledger status or
// exit message without parsing error text.
var (
	// ErrExternalTool marks a converter, SES or S3 call that ran and failed.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks unusable input such as a malformed ADIF file or message.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks a setting that prevents the run from starting.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing input file, template or binary.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks a conversion or request that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient is the default marker when none is given.
	ErrTransient = errors.New("transient failure")
)

// Wrap tags err with marker and prefixes it with "component: operation:
// message", skipping blank parts.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonBlank(component, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// OutcomeStatus maps a conversion error to the ledger status recorded for it.
// Any failure other than a timeout counts as a raster failure.
func OutcomeStatus(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusRendered
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return history.StatusTimedOut
	default:
		return history.StatusRasterFailed
	}
}

func joinNonBlank(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ": ")
}
