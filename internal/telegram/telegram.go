// Package telegram is the publish collaborator: it delivers one rendered
// digest to one channel.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/remotelatam/jobdigest/internal/logger"
	"github.com/remotelatam/jobdigest/internal/retry"
)

type Publisher struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	retries retry.Config
}

// NewPublisher builds the publisher with credentials passed in
// explicitly; nothing in the pipeline reads the environment. The HTTP
// client timeout bounds every send so a hung API call fails the run
// instead of hanging it.
func NewPublisher(token string, chatID int64, timeout time.Duration, attempts int, delay time.Duration) (*Publisher, error) {
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Publisher{
		api:    api,
		chatID: chatID,
		retries: retry.Config{
			MaxAttempts: attempts,
			Delay:       delay,
			Backoff:     true,
		},
	}, nil
}

// Send delivers the digest with HTML parse mode and link previews off.
// A non-ok acknowledgement from the API surfaces as an error, which the
// caller treats as fatal for the run.
func (p *Publisher) Send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(p.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	attempt := 0
	err := retry.WithRetry(ctx, p.retries, func() error {
		attempt++
		if _, err := p.api.Send(msg); err != nil {
			logger.Warn("telegram send failed", "attempt", attempt, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	logger.Info("digest sent", "chars", len(text), "attempts", attempt)
	return nil
}
