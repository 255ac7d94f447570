package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"lyricmux/internal/config"
)

const userAgent = "lyricmux/0.1.0"

// Service defines the notification surface exposed to the batch pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, audioDir string, count int) error
	NotifyRunCompleted(ctx context.Context, audioDir string, processed, skipped, failed int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, audioDir string, runErr error) error
	TestNotification(ctx context.Context) error
}

// Enabled reports whether the configuration carries an ntfy topic.
func Enabled(cfg *config.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned, so
// callers never guard their notify calls.
func NewService(cfg *config.Config) Service {
	if !Enabled(cfg) {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: strings.TrimSpace(cfg.Notifications.NtfyTopic),
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

func (n *ntfyService) NotifyRunStarted(ctx context.Context, audioDir string, count int) error {
	data := payload{
		title:   "lyricmux - Run Started",
		message: fmt.Sprintf("Embedding into %d files in %s", count, filepath.Base(audioDir)),
		tags:    []string{"lyricmux", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, audioDir string, processed, skipped, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	dir := filepath.Base(audioDir)
	data := payload{
		tags: []string{"lyricmux", "run", "completed"},
	}
	if failed == 0 {
		data.title = "lyricmux - Run Complete"
		data.message = fmt.Sprintf("%s: %d embedded, %d skipped in %s", dir, processed, skipped, duration)
	} else {
		data.title = "lyricmux - Run Complete (with errors)"
		data.message = fmt.Sprintf("%s: %d embedded, %d skipped, %d failed in %s", dir, processed, skipped, failed, duration)
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, audioDir string, runErr error) error {
	reason := "unknown"
	if runErr != nil {
		reason = strings.TrimSpace(runErr.Error())
	}
	data := payload{
		title:    "lyricmux - Run Failed",
		message:  fmt.Sprintf("%s: %s", filepath.Base(audioDir), reason),
		tags:     []string{"lyricmux", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "lyricmux - Test",
		message:  "Notification system test",
		tags:     []string{"lyricmux", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyRunStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
