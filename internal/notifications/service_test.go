package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qslgen/internal/config"
	"qslgen/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var requests []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func serviceFor(endpoint string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRenderCompleted, notifications.Payload{"total": 3}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestPublishFormatsEvents(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:        "render completed",
			event:       notifications.EventRenderCompleted,
			payload:     notifications.Payload{"total": 3, "with_email": 2, "without_email": 1},
			expectTitle: "qslgen - Cards Rendered",
			expectBody:  "Rendered 3 card(s): 2 with email, 1 without",
			expectTags:  "qslgen,render,completed",
		},
		{
			name:        "render with raster failures",
			event:       notifications.EventRenderCompleted,
			payload:     notifications.Payload{"total": 2, "with_email": 1, "without_email": 1, "raster_failures": 1},
			expectTitle: "qslgen - Cards Rendered (with errors)",
			expectBody:  "1 card(s) could not be converted",
			expectTags:  "qslgen,render,completed",
		},
		{
			name:        "delivery completed",
			event:       notifications.EventDeliveryCompleted,
			payload:     notifications.Payload{"sent": 4, "skipped": 1, "failed": 2},
			expectTitle: "qslgen - Cards Sent (with errors)",
			expectBody:  "Sent 4 card(s), skipped 1, 2 failed",
			expectTags:  "qslgen,email,completed",
		},
		{
			name:           "run failed",
			event:          notifications.EventRunFailed,
			payload:        notifications.Payload{"context": "render", "error": errors.New("disk full")},
			expectTitle:    "qslgen - Error",
			expectBody:     "Error during render: disk full",
			expectTags:     "qslgen,error,alert",
			expectPriority: "high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newServer(t, http.StatusOK)
			svc := serviceFor(server.URL)
			if err := svc.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			if len(*requests) != 1 {
				t.Fatalf("expected 1 request, got %d", len(*requests))
			}
			got := (*requests)[0]
			if got.title != tt.expectTitle {
				t.Fatalf("title = %q, want %q", got.title, tt.expectTitle)
			}
			if !strings.Contains(got.body, tt.expectBody) {
				t.Fatalf("body = %q, want it to contain %q", got.body, tt.expectBody)
			}
			if got.tags != tt.expectTags {
				t.Fatalf("tags = %q, want %q", got.tags, tt.expectTags)
			}
			if got.priority != tt.expectPriority {
				t.Fatalf("priority = %q, want %q", got.priority, tt.expectPriority)
			}
		})
	}
}

func TestPublishIgnoresUnknownEvents(t *testing.T) {
	server, requests := newServer(t, http.StatusOK)
	svc := serviceFor(server.URL)
	if err := svc.Publish(context.Background(), notifications.Event("unknown"), nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(*requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(*requests))
	}
}

func TestPublishReportsHTTPErrors(t *testing.T) {
	server, _ := newServer(t, http.StatusForbidden)
	svc := serviceFor(server.URL)
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
