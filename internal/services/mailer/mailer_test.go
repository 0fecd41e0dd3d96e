package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"qslgen/internal/logging"
	"qslgen/internal/services"
	"qslgen/internal/services/mailer"
)

type stubSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (s *stubSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func cardMessage() mailer.Message {
	return mailer.Message{
		To:      "w1aw@example.com",
		Subject: mailer.Expand("QSL card for {call}", "W1AW"),
		Body:    mailer.Expand("Hello {call},\n\n73", "W1AW"),
		Attachments: []mailer.Attachment{
			{Name: "W1AW.png", ContentType: "image/png", Data: bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 40)},
		},
	}
}

func TestBuildRawProducesMultipartMessage(t *testing.T) {
	raw, err := mailer.BuildRaw(mail.Address{Name: "QSL Manager", Address: "qsl@example.com"}, cardMessage(), time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildRaw returned error: %v", err)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if got := parsed.Header.Get("Subject"); got != "QSL card for W1AW" {
		t.Fatalf("unexpected subject %q", got)
	}
	if got := parsed.Header.Get("To"); got != "w1aw@example.com" {
		t.Fatalf("unexpected recipient %q", got)
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("unexpected content type %q: %v", mediaType, err)
	}

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	text, err := reader.NextPart()
	if err != nil {
		t.Fatalf("read text part: %v", err)
	}
	body, _ := io.ReadAll(text)
	if !strings.Contains(string(body), "Hello W1AW,") {
		t.Fatalf("unexpected body %q", body)
	}
	attachment, err := reader.NextPart()
	if err != nil {
		t.Fatalf("read attachment part: %v", err)
	}
	if attachment.FileName() != "W1AW.png" {
		t.Fatalf("unexpected attachment name %q", attachment.FileName())
	}
	if !strings.HasPrefix(attachment.Header.Get("Content-Type"), "image/png") {
		t.Fatalf("unexpected attachment type %q", attachment.Header.Get("Content-Type"))
	}
}

func TestBuildRawRejectsBadRecipient(t *testing.T) {
	msg := cardMessage()
	msg.To = "not an address"
	if _, err := mailer.BuildRaw(mail.Address{Address: "qsl@example.com"}, msg, time.Now()); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestSESSenderSendsRawMessage(t *testing.T) {
	client := &stubSES{}
	sender, err := mailer.NewSESSenderWithClient(client, "qsl@example.com", "QSL Manager")
	if err != nil {
		t.Fatalf("NewSESSenderWithClient returned error: %v", err)
	}
	if err := sender.Send(context.Background(), cardMessage()); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected 1 SES call, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if *input.FromEmailAddress != "qsl@example.com" {
		t.Fatalf("unexpected from %q", *input.FromEmailAddress)
	}
	if len(input.Destination.ToAddresses) != 1 || input.Destination.ToAddresses[0] != "w1aw@example.com" {
		t.Fatalf("unexpected destination %#v", input.Destination)
	}
	if input.Content.Raw == nil || !bytes.Contains(input.Content.Raw.Data, []byte("From: \"QSL Manager\" <qsl@example.com>")) {
		t.Fatalf("expected raw MIME content with named sender")
	}
}

func TestSESSenderWrapsClientError(t *testing.T) {
	sender, err := mailer.NewSESSenderWithClient(&stubSES{err: errors.New("throttled")}, "qsl@example.com", "")
	if err != nil {
		t.Fatalf("NewSESSenderWithClient returned error: %v", err)
	}
	if err := sender.Send(context.Background(), cardMessage()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewSESSenderRejectsBadFrom(t *testing.T) {
	if _, err := mailer.NewSESSenderWithClient(&stubSES{}, "nope", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNoopSenderValidates(t *testing.T) {
	sender := mailer.NewNoopSender(logging.NewNop())
	if err := sender.Send(context.Background(), cardMessage()); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	msg := cardMessage()
	msg.Subject = " "
	if err := sender.Send(context.Background(), msg); err == nil {
		t.Fatal("expected validation error")
	}
}
