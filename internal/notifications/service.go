package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qslgen/internal/config"
)

const userAgent = "qslgen/0.1.0"

// Event identifies a milestone worth telling the operator about.
type Event string

const (
	EventRenderCompleted   Event = "render_completed"
	EventDeliveryCompleted Event = "delivery_completed"
	EventRunFailed         Event = "run_failed"
	EventTest              Event = "test"
)

// Payload carries event details keyed by name.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRenderCompleted:
		total := intValue(payload, "total")
		failures := intValue(payload, "raster_failures")
		msg := message{
			title: "qslgen - Cards Rendered",
			body: fmt.Sprintf("Rendered %d card(s): %d with email, %d without",
				total, intValue(payload, "with_email"), intValue(payload, "without_email")),
			tags: []string{"qslgen", "render", "completed"},
		}
		if failures > 0 {
			msg.title = "qslgen - Cards Rendered (with errors)"
			msg.body += fmt.Sprintf("\n%d card(s) could not be converted", failures)
		}
		return msg, true
	case EventDeliveryCompleted:
		msg := message{
			title: "qslgen - Cards Sent",
			body: fmt.Sprintf("Sent %d card(s), skipped %d",
				intValue(payload, "sent"), intValue(payload, "skipped")),
			tags: []string{"qslgen", "email", "completed"},
		}
		if failed := intValue(payload, "failed"); failed > 0 {
			msg.title = "qslgen - Cards Sent (with errors)"
			msg.body += fmt.Sprintf(", %d failed", failed)
		}
		return msg, true
	case EventRunFailed:
		var b strings.Builder
		b.WriteString("Error")
		if label := stringValue(payload, "context"); label != "" {
			b.WriteString(" during ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if detail := stringValue(payload, "error"); detail != "" {
			b.WriteString(detail)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "qslgen - Error",
			body:     b.String(),
			tags:     []string{"qslgen", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "qslgen - Test",
			body:     "Notification system test",
			tags:     []string{"qslgen", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func intValue(payload Payload, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func stringValue(payload Payload, key string) string {
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return ""
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
