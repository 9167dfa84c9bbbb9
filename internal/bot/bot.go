package bot

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rewriter/internal/pipeline"
	"rewriter/internal/ratelimiter"
	"rewriter/internal/session"
)

const (
	maxBackoff     = 60 * time.Second
	initialBackoff = 3 * time.Second
	resetOffsetAt  = 30 * time.Second

	// Generation is two sequential provider calls, each bounded by the
	// provider timeout.
	updateProcessingTimeout = 5 * time.Minute

	BotUpdateTimeout = 60
)

// Messenger delivers outgoing Telegram requests.
type Messenger interface {
	Send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Rewriter runs the article pipeline for one session.
type Rewriter interface {
	RunCleanup(ctx context.Context, sess *session.Session, rawText string) (string, error)
	RunGenerate(ctx context.Context, sess *session.Session) (pipeline.Result, error)
}

// ArticleFetcher turns a pasted link into article text.
type ArticleFetcher interface {
	SingleURL(text string) (string, bool)
	FetchArticle(ctx context.Context, pageURL string) (string, error)
}

type Bot struct {
	api          *tgbotapi.BotAPI
	rateLimiter  *ratelimiter.RateLimiter
	messenger    Messenger
	pipeline     Rewriter
	sessions     *session.Store
	fetcher      ArticleFetcher
	password     string
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	password string,
	allowedUsers []int64,
	rewriter Rewriter,
	sessions *session.Store,
	fetcher ArticleFetcher,
	log *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	rateLimiter := ratelimiter.New(api, log)

	return &Bot{
		api:          api,
		rateLimiter:  rateLimiter,
		messenger:    rateLimiter,
		pipeline:     rewriter,
		sessions:     sessions,
		fetcher:      fetcher,
		password:     password,
		allowedUsers: allowedUsers,
		log:          log,
	}, nil
}

// Start polls for updates until ctx is done. Updates are handled one at a
// time, so each chat sees its messages processed in order.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoff := initialBackoff

	for {
		updates := b.api.GetUpdatesChan(updateConfig)

		if !b.consume(ctx, updates, &updateConfig) {
			b.api.StopReceivingUpdates()
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())

			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
		if backoff >= resetOffsetAt {
			updateConfig.Offset = 0
		}
	}
}

// consume reports false once ctx is done and true when updates was closed.
func (b *Bot) consume(
	ctx context.Context,
	updates tgbotapi.UpdatesChannel,
	updateConfig *tgbotapi.UpdateConfig,
) bool {
	for {
		select {
		case <-ctx.Done():
			return false

		case update, ok := <-updates:
			if !ok {
				return true
			}
			updateConfig.Offset = update.UpdateID + 1

			b.handleUpdate(ctx, &update)
		}
	}
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		message := update.Message

		if !b.userAllowed(message.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", message.From.ID,
				"chatID", message.Chat.ID,
				"username", message.From.UserName)

			return
		}

		if err := b.handleMessage(updateCtx, message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", message.Chat.ID,
				"userID", message.From.ID,
				"messageID", message.MessageID)
		}

	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		callback := update.CallbackQuery
		chatID := callbackChatID(callback)

		if !b.userAllowed(callback.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", callback.From.ID,
				"chatID", chatID,
				"username", callback.From.UserName,
				"data", callback.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", callback.From.ID,
				"data", callback.Data)
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}
