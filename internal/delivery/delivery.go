// Package delivery emails rendered cards to the recipients listed in the
// with-email manifest, optionally archiving each card to object storage first.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"qslgen/internal/logging"
	"qslgen/internal/manifest"
	"qslgen/internal/services"
	"qslgen/internal/services/mailer"
)

// Archiver stores a card before it is sent.
type Archiver interface {
	Key(runID, fileName string) string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Ledger tracks which cards were delivered.
type Ledger interface {
	DeliveredCallSigns(ctx context.Context) (map[string]time.Time, error)
	MarkDelivered(ctx context.Context, runID, callSign string, when time.Time) error
}

// Options controls message content and resend behaviour.
type Options struct {
	Subject string
	Body    string
	// Resend delivers cards the ledger already marks as sent.
	Resend bool
}

// Result counts delivery outcomes.
type Result struct {
	Sent     int
	Archived int
	Skipped  int
	Failed   int
}

// Service delivers cards.
type Service struct {
	sender   mailer.Sender
	archiver Archiver
	ledger   Ledger
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithArchiver uploads each card before sending it.
func WithArchiver(a Archiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

// WithLedger skips delivered cards and records new deliveries.
func WithLedger(l Ledger) Option {
	return func(s *Service) {
		s.ledger = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a delivery service.
func New(sender mailer.Sender, opts Options, options ...Option) (*Service, error) {
	if sender == nil {
		return nil, services.Wrap(services.ErrConfiguration, "delivery", "new", "sender required", nil)
	}
	s := &Service{sender: sender, opts: opts, now: time.Now}
	for _, opt := range options {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "delivery")
	return s, nil
}

// Send delivers every row. Per-card failures are logged and counted; only
// cancellation and ledger read failures abort the batch.
func (s *Service) Send(ctx context.Context, runID string, rows []manifest.Row) (Result, error) {
	var result Result
	ctx = services.WithRunID(ctx, runID)

	delivered := map[string]time.Time{}
	if s.ledger != nil && !s.opts.Resend {
		var err error
		if delivered, err = s.ledger.DeliveredCallSigns(ctx); err != nil {
			return result, fmt.Errorf("load delivered call signs: %w", err)
		}
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowCtx := services.WithRecordIndex(services.WithCallSign(ctx, row.CallSign), i+1)
		logger := logging.WithContext(rowCtx, s.logger)

		if when, ok := delivered[row.CallSign]; ok {
			result.Skipped++
			logger.Info("card already delivered", logging.String("delivered_at", when.Format(time.RFC3339)))
			continue
		}
		if !row.HasEmail() {
			result.Skipped++
			continue
		}

		archived, err := s.deliver(rowCtx, runID, row)
		if archived {
			result.Archived++
		}
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			logging.ErrorWithContext(logger, "card delivery failed", "delivery_failed",
				logging.String("email", row.Email),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the card path and email settings, then rerun qslgen send"),
			)
			continue
		}
		result.Sent++
		logger.Info("card delivered", logging.String("email", row.Email))

		if s.ledger != nil && runID != "" {
			if err := s.ledger.MarkDelivered(rowCtx, runID, row.CallSign, s.now()); err != nil {
				logging.WarnWithContext(logger, "ledger update failed", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "card may be sent again on the next run"),
				)
			}
		}
	}
	return result, nil
}

func (s *Service) deliver(ctx context.Context, runID string, row manifest.Row) (bool, error) {
	if row.PNGPath == "" {
		return false, services.Wrap(services.ErrNotFound, "delivery", "read card", "manifest row has no image path", nil)
	}
	data, err := os.ReadFile(row.PNGPath)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return false, services.Wrap(marker, "delivery", "read card", row.PNGPath, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(row.PNGPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	archived := false
	if s.archiver != nil {
		location, err := s.archiver.Upload(ctx, s.archiver.Key(runID, row.PNGPath), bytes.NewReader(data), contentType)
		if err != nil {
			return false, err
		}
		archived = true
		logging.WithContext(ctx, s.logger).Info("card archived", logging.String("location", location))
	}

	msg := mailer.Message{
		To:      row.Email,
		Subject: mailer.Expand(s.opts.Subject, row.CallSign),
		Body:    mailer.Expand(s.opts.Body, row.CallSign),
		Attachments: []mailer.Attachment{{
			Name:        filepath.Base(row.PNGPath),
			ContentType: contentType,
			Data:        data,
		}},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return archived, err
	}
	return archived, nil
}
