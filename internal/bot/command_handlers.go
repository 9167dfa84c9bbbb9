package bot

import (
	"context"
	"fmt"

	"rewriter/internal/buffer"
	"rewriter/internal/markdown"
	"rewriter/internal/session"
)

const welcomeText = `🤖 *Welcome to Article Rewriter\!*

I turn news articles into a new Chinese article\. Here is how:

1\. Paste the text of a German article, or a link to it\. I clean it up and add it to the buffer\.
2\. Repeat for every source article you want to combine\.
3\. Press *Generate* or send /generate\. I translate the buffer and write one article from it\.

/buffer shows the buffer, /clear empties it, /menu shows the buttons\.`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	keyboard := menuKeyboard()

	return b.sendMarkdown(ctx, chatID, welcomeText, &keyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	keyboard := menuKeyboard()

	return b.sendMarkdown(ctx, chatID, "❔ *Choose an option:*", &keyboard)
}

func (b *Bot) handleShowBuffer(ctx context.Context, sess *session.Session) error {
	contents, count := sess.Buffer.Snapshot()
	keyboard := menuKeyboard()

	if count == 0 {
		return b.sendMarkdown(ctx, sess.ChatID, "✖️ Buffer is empty\\.", &keyboard)
	}

	header := "📄 " + markdown.Bold(fmt.Sprintf("Buffer: %d article(s), %d words", count, buffer.WordCount(contents)))
	if err := b.sendMarkdown(ctx, sess.ChatID, header, nil); err != nil {
		return fmt.Errorf("send buffer header: %w", err)
	}

	return b.sendPlain(ctx, sess.ChatID, contents, &keyboard)
}

func (b *Bot) handleClearBuffer(ctx context.Context, sess *session.Session) error {
	sess.Buffer.Clear()

	b.log.InfoContext(ctx, "Buffer cleared",
		"chatID", sess.ChatID,
		"sessionID", sess.ID)

	keyboard := menuKeyboard()

	return b.sendMarkdown(ctx, sess.ChatID, "🗑 Buffer cleared\\.", &keyboard)
}
