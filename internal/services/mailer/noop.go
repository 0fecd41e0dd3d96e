package mailer

import (
	"context"
	"log/slog"

	"qslgen/internal/logging"
)

// NoopSender logs messages instead of sending them.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a sender for dry runs.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logging.NewComponentLogger(logger, "mailer")}
}

func (s *NoopSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Name)
	}
	s.logger.Info("dry run: email not sent",
		logging.String("to", msg.To),
		logging.String("subject", msg.Subject),
		logging.Any("attachments", names),
	)
	return nil
}
