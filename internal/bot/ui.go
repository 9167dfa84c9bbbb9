package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rewriter/internal/markdown"
)

const sendSpinnerInterval = 4 * time.Second

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	if _, err := b.messenger.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}

// withSpinner keeps the typing indicator visible while fn runs.
func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinnerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		b.sendTyping(spinnerCtx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-spinnerCtx.Done():
				return
			case <-t.C:
				b.sendTyping(spinnerCtx, chatID)
			}
		}
	}()

	err := fn()

	cancel()
	<-done

	return err
}

// sendMarkdown sends text that is already MarkdownV2 escaped.
func (b *Bot) sendMarkdown(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) error {
	message := tgbotapi.NewMessage(chatID, b.validUTF8(ctx, chatID, text))

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2
	message.DisableWebPagePreview = true
	if keyboard != nil {
		message.ReplyMarkup = *keyboard
	}

	if _, err := b.messenger.Send(ctx, message); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// sendPlain sends text without parse mode, split into as many messages as
// Telegram needs. The keyboard goes on the last part.
func (b *Bot) sendPlain(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) error {
	parts := markdown.Split(b.validUTF8(ctx, chatID, text), markdown.MaxMessageRunes)

	var errs []error

	for i, part := range parts {
		message := tgbotapi.NewMessage(chatID, part)
		message.DisableWebPagePreview = true
		if keyboard != nil && i == len(parts)-1 {
			message.ReplyMarkup = *keyboard
		}

		if _, err := b.messenger.Send(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) sendFailure(ctx context.Context, chatID int64, text string) error {
	keyboard := returnKeyboard()

	return b.sendPlain(ctx, chatID, "❌ "+text, &keyboard)
}

func (b *Bot) validUTF8(ctx context.Context, chatID int64, text string) string {
	normalized := strings.ToValidUTF8(text, "?")
	if normalized != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalized))
	}

	return normalized
}
