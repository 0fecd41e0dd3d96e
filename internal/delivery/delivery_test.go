package delivery_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qslgen/internal/delivery"
	"qslgen/internal/manifest"
	"qslgen/internal/services/mailer"
)

type recordingSender struct {
	sent []mailer.Message
	fail map[string]error
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if err := r.fail[msg.To]; err != nil {
		return err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type memoryArchiver struct {
	keys []string
}

func (m *memoryArchiver) Key(runID, fileName string) string {
	return runID + "/" + filepath.Base(fileName)
}

func (m *memoryArchiver) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "s3://bucket/" + key, nil
}

type memoryLedger struct {
	delivered map[string]time.Time
	marked    []string
}

func (m *memoryLedger) DeliveredCallSigns(context.Context) (map[string]time.Time, error) {
	return m.delivered, nil
}

func (m *memoryLedger) MarkDelivered(_ context.Context, runID, callSign string, _ time.Time) error {
	m.marked = append(m.marked, runID+":"+callSign)
	return nil
}

func writeCard(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("\x89PNG"), 0o644); err != nil {
		t.Fatalf("write card: %v", err)
	}
	return path
}

func options() delivery.Options {
	return delivery.Options{Subject: "QSL card for {call}", Body: "Hello {call}"}
}

func TestSendDeliversArchivesAndMarks(t *testing.T) {
	dir := t.TempDir()
	rows := []manifest.Row{
		{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: writeCard(t, dir, "W1AW.png")},
		{CallSign: "K1ABC", Email: "k1abc@example.com", PNGPath: writeCard(t, dir, "K1ABC.png")},
	}
	sender := &recordingSender{}
	archiver := &memoryArchiver{}
	ledger := &memoryLedger{}
	svc, err := delivery.New(sender, options(), delivery.WithArchiver(archiver), delivery.WithLedger(ledger))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result, err := svc.Send(context.Background(), "run-1", rows)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.Sent != 2 || result.Archived != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if sender.sent[0].Subject != "QSL card for W1AW" || sender.sent[0].Body != "Hello W1AW" {
		t.Fatalf("unexpected message: %#v", sender.sent[0])
	}
	att := sender.sent[0].Attachments[0]
	if att.Name != "W1AW.png" || att.ContentType != "image/png" || string(att.Data) != "\x89PNG" {
		t.Fatalf("unexpected attachment: %#v", att)
	}
	if len(archiver.keys) != 2 || archiver.keys[1] != "run-1/K1ABC.png" {
		t.Fatalf("unexpected archive keys: %v", archiver.keys)
	}
	if len(ledger.marked) != 2 || ledger.marked[0] != "run-1:W1AW" {
		t.Fatalf("unexpected ledger marks: %v", ledger.marked)
	}
}

func TestSendSkipsDeliveredUnlessResend(t *testing.T) {
	dir := t.TempDir()
	rows := []manifest.Row{{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: writeCard(t, dir, "W1AW.png")}}
	ledger := &memoryLedger{delivered: map[string]time.Time{"W1AW": time.Now()}}

	sender := &recordingSender{}
	svc, err := delivery.New(sender, options(), delivery.WithLedger(ledger))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	result, err := svc.Send(context.Background(), "run-2", rows)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.Skipped != 1 || len(sender.sent) != 0 {
		t.Fatalf("expected skip, got %+v", result)
	}

	resend := options()
	resend.Resend = true
	svc, err = delivery.New(sender, resend, delivery.WithLedger(ledger))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	result, err = svc.Send(context.Background(), "run-2", rows)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("expected resend, got %+v", result)
	}
}

func TestSendCountsFailuresAndContinues(t *testing.T) {
	dir := t.TempDir()
	rows := []manifest.Row{
		{CallSign: "MISSING", Email: "m@example.com", PNGPath: filepath.Join(dir, "missing.png")},
		{CallSign: "BOUNCE", Email: "b@example.com", PNGPath: writeCard(t, dir, "BOUNCE.png")},
		{CallSign: "NOPNG", Email: "n@example.com"},
		{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: writeCard(t, dir, "W1AW.png")},
	}
	sender := &recordingSender{fail: map[string]error{"b@example.com": errors.New("rejected")}}
	ledger := &memoryLedger{}
	svc, err := delivery.New(sender, options(), delivery.WithLedger(ledger))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result, err := svc.Send(context.Background(), "run-3", rows)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if result.Sent != 1 || result.Failed != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(ledger.marked) != 1 || ledger.marked[0] != "run-3:W1AW" {
		t.Fatalf("only delivered cards should be marked: %v", ledger.marked)
	}
}

func TestSendStopsOnCancellation(t *testing.T) {
	svc, err := delivery.New(&recordingSender{}, options())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows := []manifest.Row{{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: "x.png"}}
	if _, err := svc.Send(ctx, "", rows); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRequiresSender(t *testing.T) {
	if _, err := delivery.New(nil, options()); err == nil {
		t.Fatal("expected error without sender")
	}
}
