// Package telegram adapts the Telegram Bot API to the dialog engine:
// update decoding, prompt delivery and inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/arbor/internal/logging"
)

// Client owns the Bot API connection.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// Dial authenticates with the Bot API.
func Dial(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Authorized on Telegram", "account", api.Self.UserName)
	return &Client{api: api, logger: logger}, nil
}

// Sender exposes the client for the messenger.
func (c *Client) Sender() Sender {
	return c.api
}

// Poll streams updates with long polling until ctx is done.
func (c *Client) Poll(ctx context.Context, timeout int) <-chan Event {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := c.api.GetUpdatesChan(cfg)

	out := make(chan Event)
	go func() {
		defer close(out)
		defer c.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := FromUpdate(u)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// SetWebhook registers url with Telegram. An empty url removes the webhook
// so that long polling works again.
func (c *Client) SetWebhook(url string) error {
	if url == "" {
		_, err := c.api.Request(tgbotapi.DeleteWebhookConfig{})
		return err
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// DecodeWebhook reads one update pushed by Telegram.
func DecodeWebhook(r *http.Request) (Event, bool, error) {
	var api tgbotapi.BotAPI
	u, err := api.HandleUpdate(r)
	if err != nil {
		return Event{}, false, err
	}
	ev, ok := FromUpdate(*u)
	return ev, ok, nil
}
