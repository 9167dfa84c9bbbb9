package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callbackChatID(callback)
	if chatID == 0 {
		return b.answerCallback(callback, "")
	}

	sess := b.sessions.Get(chatID)
	if !sess.Authorized {
		return b.answerCallback(callback, "🔒 Password required.")
	}

	switch strings.TrimSpace(callback.Data) {
	case callbackMenu:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleMenuCommand(ctx, chatID)
		})
	case callbackClearBuffer:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleClearBuffer(ctx, sess)
		})
	case callbackShowBuffer:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleShowBuffer(ctx, sess)
		})
	case callbackGenerate:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleGenerate(ctx, sess)
		})
	default:
		return b.answerCallback(callback, "")
	}
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if err := b.answerCallback(callback, ""); err != nil {
		errs = append(errs, err)
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) answerCallback(callback *tgbotapi.CallbackQuery, text string) error {
	if _, err := b.messenger.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}

	return nil
}
