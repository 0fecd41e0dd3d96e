// Package notifications publishes run milestones to ntfy.
//
// NewService returns a no-op notifier when no topic is configured, so callers
// can publish unconditionally. Failures are returned to the caller, which
// logs them; a notification never changes the outcome of a run.
package notifications
