package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"PizzaScanner/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// Notifier sends alerts to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// Option customises the notifier.
type Option func(*Notifier)

// WithAPIURL points the notifier at another bot API host.
func WithAPIURL(url string) Option {
	return func(n *Notifier) {
		n.client.SetBaseURL(url)
	}
}

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client: resty.New().
			SetBaseURL(defaultAPIURL).
			SetTimeout(5 * time.Second),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PublishAlert posts a plain text message to Telegram.
func (n *Notifier) PublishAlert(ctx context.Context, message string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("token", n.botToken).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    message,
		}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status())
	}

	return nil
}
