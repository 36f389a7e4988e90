package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slidevox/internal/config"
)

const userAgent = "slidevox/0.1.0"

// RunSummary carries the document counts of a finished batch.
type RunSummary struct {
	RunID     string
	DryRun    bool
	Processed int
	Unchanged int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Service defines the notification surface used by the workflow runner.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifyRunAborted(ctx context.Context, runID string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op service when no topic
// is configured.
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

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	total := summary.Processed + summary.Unchanged + summary.Skipped + summary.Failed
	message := fmt.Sprintf("%d decks in %s: %d processed, %d unchanged, %d skipped, %d failed",
		total, duration, summary.Processed, summary.Unchanged, summary.Skipped, summary.Failed)
	if summary.RunID != "" {
		message += "\nRun: " + summary.RunID
	}

	data := payload{
		title:   "slidevox - Batch Complete",
		message: message,
		tags:    []string{"slidevox", "batch", "completed"},
	}
	if summary.DryRun {
		data.title = "slidevox - Dry Run Complete"
		data.tags = append(data.tags, "dry-run")
	}
	if summary.Failed > 0 {
		data.title += " (with failures)"
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunAborted(ctx context.Context, runID string, err error) error {
	var b strings.Builder
	b.WriteString("Batch aborted: ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown error")
	}
	if runID != "" {
		b.WriteString("\nRun: ")
		b.WriteString(runID)
	}
	return n.send(ctx, payload{
		title:    "slidevox - Error",
		message:  b.String(),
		tags:     []string{"slidevox", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "slidevox - Test",
		message:  "Notification system test",
		tags:     []string{"slidevox", "test"},
		priority: "low",
	})
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

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error   { return nil }
func (noopService) NotifyRunAborted(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
