package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rewriter/internal/buffer"
	"rewriter/internal/fetcher"
	"rewriter/internal/markdown"
	"rewriter/internal/pipeline"
	"rewriter/internal/session"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	sess := b.sessions.Get(message.Chat.ID)

	if !sess.Authorized {
		return b.handleLogin(ctx, sess, message)
	}

	switch message.Command() {
	case "start":
		return b.handleStartCommand(ctx, message.Chat.ID)
	case "menu":
		return b.handleMenuCommand(ctx, message.Chat.ID)
	case "buffer":
		return b.handleShowBuffer(ctx, sess)
	case "clear":
		return b.handleClearBuffer(ctx, sess)
	case "generate":
		return b.handleGenerate(ctx, sess)
	case "":
		return b.handleArticleText(ctx, sess, message.Text)
	default:
		return b.handleMenuCommand(ctx, message.Chat.ID)
	}
}

// handleArticleText runs cleanup on pasted text, or on the page behind a
// pasted link, and appends the result to the session buffer.
func (b *Bot) handleArticleText(ctx context.Context, sess *session.Session, text string) error {
	return b.withSpinner(ctx, sess.ChatID, func() error {
		raw, err := b.resolveArticle(ctx, text)
		if err != nil {
			b.log.WarnContext(ctx, "Failed to fetch article page",
				"error", err,
				"chatID", sess.ChatID)

			return b.sendFailure(ctx, sess.ChatID, fetchFailureText(err))
		}

		if _, err = b.pipeline.RunCleanup(ctx, sess, raw); err != nil {
			return b.reportPipelineError(ctx, sess, "cleanup", err)
		}

		contents, count := sess.Buffer.Snapshot()

		keyboard := menuKeyboard()
		return b.sendMarkdown(ctx, sess.ChatID, fmt.Sprintf(
			"✅ *Article added\\.*\n\nBuffer: %d article\\(s\\), %d words\\.",
			count,
			buffer.WordCount(contents),
		), &keyboard)
	})
}

func (b *Bot) resolveArticle(ctx context.Context, text string) (string, error) {
	if b.fetcher == nil {
		return text, nil
	}

	pageURL, ok := b.fetcher.SingleURL(text)
	if !ok {
		return text, nil
	}

	b.log.InfoContext(ctx, "Fetching article page",
		"url", pageURL)

	return b.fetcher.FetchArticle(ctx, pageURL)
}

func fetchFailureText(err error) string {
	var httpErr *fetcher.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Could not fetch the page (HTTP %d). Paste the article text instead.", httpErr.StatusCode)
	}

	return "Could not fetch the page. Paste the article text instead."
}

func (b *Bot) handleGenerate(ctx context.Context, sess *session.Session) error {
	return b.withSpinner(ctx, sess.ChatID, func() error {
		result, err := b.pipeline.RunGenerate(ctx, sess)
		if err != nil {
			return b.reportPipelineError(ctx, sess, "generate", err)
		}

		var errs []error

		if err = b.sendPlain(ctx, sess.ChatID, result.Article, nil); err != nil {
			errs = append(errs, fmt.Errorf("send article: %w", err))
		}

		keyboard := menuKeyboard()
		caption := fmt.Sprintf(
			"Generated article word count: %d\nBased on %d source article(s)",
			buffer.ArticleWordCount(result.Article),
			result.ArticleCount,
		)
		if err = b.sendMarkdown(ctx, sess.ChatID, markdown.EscapeV2(caption), &keyboard); err != nil {
			errs = append(errs, fmt.Errorf("send caption: %w", err))
		}

		return errors.Join(errs...)
	})
}

// reportPipelineError shows err to the user. Only failures to reply are
// returned; the pipeline error itself is logged here.
func (b *Bot) reportPipelineError(ctx context.Context, sess *session.Session, step string, err error) error {
	if errors.Is(err, buffer.ErrEmptyInput) || errors.Is(err, pipeline.ErrEmptyBuffer) {
		b.log.InfoContext(ctx, "Pipeline step rejected input",
			"error", err,
			"step", step,
			"chatID", sess.ChatID)
	} else {
		b.log.ErrorContext(ctx, "Pipeline step failed",
			"error", err,
			"step", step,
			"chatID", sess.ChatID,
			"sessionID", sess.ID)
	}

	return b.sendFailure(ctx, sess.ChatID, pipeline.UserMessage(err))
}
