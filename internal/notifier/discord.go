// Package notifier pushes run events to an external webhook. Notification
// failures never influence the run; callers log them and move on.
package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

type Notifier interface {
	Notify(content string) error
}

// DiscordNotifier posts run events to a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string

	// Client is used for webhook posts; a timeout-bounded default is used
	// when nil so a stuck webhook cannot stall the run between batches.
	Client *http.Client
}

func (d *DiscordNotifier) Notify(content string) error {
	if d.WebhookURL == "" {
		return fmt.Errorf("webhook URL is not set")
	}

	payload := map[string]string{"content": content}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := client.Post(d.WebhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook failed with status %d", resp.StatusCode)
	}

	return nil
}
