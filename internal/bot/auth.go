package bot

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rewriter/internal/session"
)

const (
	passwordPromptText = "🔒 *Article Rewriter*\n\nPlease enter the password to continue\\."
	passwordWrongText  = "Password incorrect"
	accessGrantedText  = "✅ *Access granted\\.*\n\nPaste article text or a link to start filling the buffer\\."
)

func (b *Bot) checkPassword(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(b.password)) == 1
}

// handleLogin treats any message of an unauthorized session as a password
// attempt. The attempt is deleted from the chat on success.
func (b *Bot) handleLogin(ctx context.Context, sess *session.Session, message *tgbotapi.Message) error {
	if message.IsCommand() || strings.TrimSpace(message.Text) == "" {
		return b.sendMarkdown(ctx, message.Chat.ID, passwordPromptText, nil)
	}

	if !b.checkPassword(message.Text) {
		b.log.WarnContext(ctx, "Wrong password",
			"chatID", message.Chat.ID,
			"userID", message.From.ID)

		return b.sendFailure(ctx, message.Chat.ID, passwordWrongText)
	}

	sess.Authorized = true

	b.log.InfoContext(ctx, "Session authorized",
		"chatID", message.Chat.ID,
		"userID", message.From.ID,
		"sessionID", sess.ID)

	if _, err := b.messenger.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		b.log.WarnContext(ctx, "Failed to delete password message",
			"error", err,
			"chatID", message.Chat.ID,
			"messageID", message.MessageID)
	}

	keyboard := menuKeyboard()
	if err := b.sendMarkdown(ctx, message.Chat.ID, accessGrantedText, &keyboard); err != nil {
		return fmt.Errorf("send access granted: %w", err)
	}

	return nil
}
