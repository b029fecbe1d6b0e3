package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/config"
)

const userAgent = "imgutil/0.1.0"

// Event names a notification kind.
type Event string

const (
	EventBatchCompleted Event = "batch_completed"
	EventBatchFailed    Event = "batch_failed"
	EventError          Event = "error"
	EventTest           Event = "test"
)

// Payload carries the values rendered into a notification.
type Payload map[string]any

// Service defines the notification surface exposed to commands.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

// SummaryEvent picks the event for a finished batch: completed when nothing
// failed and the run was not cancelled, failed otherwise.
func SummaryEvent(summary *batch.Summary) Event {
	if summary != nil && summary.Failed == 0 && !summary.Cancelled {
		return EventBatchCompleted
	}
	return EventBatchFailed
}

// SummaryPayload renders the fields of a batch summary used in notifications.
func SummaryPayload(summary *batch.Summary) Payload {
	if summary == nil {
		return Payload{}
	}
	return Payload{
		"operation": string(summary.Operation),
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"duration":  summary.Duration(),
		"message":   summary.Message(),
		"source":    summary.SourceDir,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if !n.enabled(event, data) {
		return nil
	}
	msg, ok := render(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event, data Payload) bool {
	switch event {
	case EventBatchCompleted:
		return n.settings.BatchCompleted && intValue(data, "total") >= n.settings.MinFiles
	case EventBatchFailed:
		return n.settings.BatchFailed
	case EventError:
		return n.settings.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func render(event Event, data Payload) (payload, bool) {
	switch event {
	case EventBatchCompleted:
		op := stringValue(data, "operation")
		return payload{
			title: fmt.Sprintf("imgutil - %s complete", titleCase(op)),
			message: fmt.Sprintf("✅ %s: %d files in %s",
				stringValue(data, "message"), intValue(data, "total"), durationText(data)),
			tags: []string{"imgutil", op, "completed"},
		}, true
	case EventBatchFailed:
		op := stringValue(data, "operation")
		return payload{
			title: fmt.Sprintf("imgutil - %s finished with errors", titleCase(op)),
			message: fmt.Sprintf("⚠️ %s: %d succeeded, %d failed of %d in %s",
				stringValue(data, "message"), intValue(data, "succeeded"), intValue(data, "failed"),
				intValue(data, "total"), durationText(data)),
			tags:     []string{"imgutil", op, "failed"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := stringValue(data, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if msg := stringValue(data, "error"); msg != "" {
			builder.WriteString(msg)
		} else {
			builder.WriteString("unknown")
		}
		return payload{
			title:    "imgutil - Error",
			message:  builder.String(),
			tags:     []string{"imgutil", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "imgutil - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"imgutil", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func stringValue(data Payload, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func intValue(data Payload, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func durationText(data Payload) string {
	d, _ := data["duration"].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func titleCase(op string) string {
	if op == "" {
		return "Batch"
	}
	return strings.ToUpper(op[:1]) + op[1:]
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
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

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
