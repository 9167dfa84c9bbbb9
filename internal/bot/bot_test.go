package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rewriter/internal/pipeline"
	"rewriter/internal/prompts"
	"rewriter/internal/provider"
	"rewriter/internal/session"
)

const testPassword = "geheim"

type fakeMessenger struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeMessenger) Send(_ context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.messages = append(f.messages, msg)

	return tgbotapi.Message{MessageID: len(f.messages)}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, 0, len(f.messages))
	for _, msg := range f.messages {
		texts = append(texts, msg.Text)
	}

	return texts
}

func (f *fakeMessenger) deletes() []tgbotapi.DeleteMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deletes []tgbotapi.DeleteMessageConfig
	for _, req := range f.requests {
		if d, ok := req.(tgbotapi.DeleteMessageConfig); ok {
			deletes = append(deletes, d)
		}
	}

	return deletes
}

func (f *fakeMessenger) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var answers []string
	for _, req := range f.requests {
		if cb, ok := req.(tgbotapi.CallbackConfig); ok {
			answers = append(answers, cb.Text)
		}
	}

	return answers
}

type fakeClient struct {
	mu    sync.Mutex
	calls []provider.Request
	reply func(req provider.Request) (string, error)
}

func (f *fakeClient) Call(_ context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	return f.reply(req)
}

type fakeFetcher struct {
	fetched []string
	text    string
}

func (f *fakeFetcher) SingleURL(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, strings.HasPrefix(text, "https://")
}

func (f *fakeFetcher) FetchArticle(_ context.Context, pageURL string) (string, error) {
	f.fetched = append(f.fetched, pageURL)
	return f.text, nil
}

type testBot struct {
	*Bot
	messenger *fakeMessenger
	client    *fakeClient
	fetcher   *fakeFetcher
}

func newTestBot(t *testing.T, allowedUsers ...int64) *testBot {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	messenger := &fakeMessenger{}
	client := &fakeClient{reply: func(req provider.Request) (string, error) {
		return "cleaned: " + req.UserPrompt, nil
	}}
	fetcher := &fakeFetcher{text: "Seiteninhalt"}

	keys := map[provider.Provider]string{provider.OpenAI: "sk-a", provider.Anthropic: "sk-b"}
	orchestrator := pipeline.New(client, prompts.Default(), keys, pipeline.NopSink{}, time.UTC, log)

	return &testBot{
		Bot: &Bot{
			messenger:    messenger,
			pipeline:     orchestrator,
			sessions:     session.NewStore(),
			fetcher:      fetcher,
			password:     testPassword,
			allowedUsers: allowedUsers,
			log:          log,
		},
		messenger: messenger,
		client:    client,
		fetcher:   fetcher,
	}
}

func (tb *testBot) authorize(chatID int64) *session.Session {
	sess := tb.sessions.Get(chatID)
	sess.Authorized = true

	return sess
}

func textUpdate(chatID int64, userID int64, text string) *tgbotapi.Update {
	message := &tgbotapi.Message{
		MessageID: 100,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}

	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			length = i
		}
		message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}

	return &tgbotapi.Update{Message: message}
}

func callbackUpdate(chatID int64, userID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{
			MessageID: 5,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: data,
	}}
}

func lastText(t *testing.T, m *fakeMessenger) string {
	t.Helper()

	texts := m.texts()
	if len(texts) == 0 {
		t.Fatalf("expected at least one message")
	}

	return texts[len(texts)-1]
}

func TestDisallowedUserIsIgnored(t *testing.T) {
	tb := newTestBot(t, 1)

	tb.handleUpdate(context.Background(), textUpdate(10, 2, testPassword))

	if got := tb.messenger.texts(); len(got) != 0 {
		t.Fatalf("expected no replies, got %q", got)
	}
	if tb.sessions.Len() != 0 {
		t.Fatalf("expected no session for disallowed user")
	}
}

func TestWrongPassword(t *testing.T) {
	tb := newTestBot(t)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "falsch"))

	if got := lastText(t, tb.messenger); !strings.Contains(got, "Password incorrect") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if tb.sessions.Get(10).Authorized {
		t.Fatalf("session must stay unauthorized")
	}
	if len(tb.client.calls) != 0 {
		t.Fatalf("expected no provider calls before login")
	}
}

func TestCorrectPasswordAuthorizesAndDeletesMessage(t *testing.T) {
	tb := newTestBot(t)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, " "+testPassword+" "))

	if !tb.sessions.Get(10).Authorized {
		t.Fatalf("expected session to be authorized")
	}

	deletes := tb.messenger.deletes()
	if len(deletes) != 1 || deletes[0].ChatID != 10 || deletes[0].MessageID != 100 {
		t.Fatalf("expected password message to be deleted, got %+v", deletes)
	}
	if got := lastText(t, tb.messenger); !strings.Contains(got, "Access granted") {
		t.Fatalf("unexpected reply: %q", got)
	}

	if tb.sessions.Get(11).Authorized {
		t.Fatalf("other chats must not be authorized")
	}
}

func TestStartBeforeLoginAsksForPassword(t *testing.T) {
	tb := newTestBot(t)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "/start"))

	if got := lastText(t, tb.messenger); !strings.Contains(got, "enter the password") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestArticleTextIsCleanedIntoBuffer(t *testing.T) {
	tb := newTestBot(t)
	sess := tb.authorize(10)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "Der Stadtrat tagte."))

	contents, count := sess.Buffer.Snapshot()
	if count != 1 || contents != "cleaned: Der Stadtrat tagte." {
		t.Fatalf("unexpected buffer: %d %q", count, contents)
	}
	if got := lastText(t, tb.messenger); !strings.Contains(got, "Buffer: 1 article") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(tb.client.calls) != 1 || tb.client.calls[0].Provider != provider.OpenAI {
		t.Fatalf("expected one cleanup call, got %+v", tb.client.calls)
	}
}

func TestLinkIsFetchedBeforeCleanup(t *testing.T) {
	tb := newTestBot(t)
	tb.authorize(10)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "https://example.de/artikel"))

	if len(tb.fetcher.fetched) != 1 || tb.fetcher.fetched[0] != "https://example.de/artikel" {
		t.Fatalf("expected page fetch, got %q", tb.fetcher.fetched)
	}
	if len(tb.client.calls) != 1 || tb.client.calls[0].UserPrompt != "Seiteninhalt" {
		t.Fatalf("expected cleanup of fetched text, got %+v", tb.client.calls)
	}
}

func TestCleanupProviderErrorIsShown(t *testing.T) {
	tb := newTestBot(t)
	sess := tb.authorize(10)
	tb.client.reply = func(provider.Request) (string, error) {
		return "", &provider.ProviderError{Provider: provider.OpenAI, Status: 500, Body: "boom"}
	}

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "Text"))

	if got := lastText(t, tb.messenger); !strings.Contains(got, "An error occurred: openai API error: 500 - boom") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if sess.Buffer.Len() != 0 {
		t.Fatalf("buffer must stay empty")
	}
}

func TestGenerateWithEmptyBuffer(t *testing.T) {
	tb := newTestBot(t)
	tb.authorize(10)

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "/generate"))

	if got := lastText(t, tb.messenger); !strings.Contains(got, "No articles in buffer") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(tb.client.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(tb.client.calls))
	}
}

func TestGenerateSendsSplitArticleAndCaptions(t *testing.T) {
	tb := newTestBot(t)
	sess := tb.authorize(10)

	for _, article := range []string{"Artikel eins", "Artikel zwei"} {
		if err := sess.Buffer.Append(article); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	article := strings.Repeat("新闻", 2500)
	tb.client.reply = func(req provider.Request) (string, error) {
		if req.Provider == provider.Anthropic {
			return "翻译", nil
		}
		return article, nil
	}

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "/generate"))

	texts := tb.messenger.texts()
	if len(texts) != 3 {
		t.Fatalf("expected 2 article parts and a caption, got %d", len(texts))
	}
	if texts[0]+texts[1] != article {
		t.Fatalf("article parts do not add up to the article")
	}

	caption := texts[2]
	if !strings.Contains(caption, "Generated article word count: 5000") {
		t.Fatalf("unexpected caption: %q", caption)
	}
	if !strings.Contains(caption, "Based on 2 source article\\(s\\)") {
		t.Fatalf("unexpected caption: %q", caption)
	}

	if _, count := sess.Buffer.Snapshot(); count != 2 {
		t.Fatalf("generate must not change the buffer, count %d", count)
	}
}

func TestClearCallback(t *testing.T) {
	tb := newTestBot(t)
	sess := tb.authorize(10)
	if err := sess.Buffer.Append("Artikel"); err != nil {
		t.Fatalf("append: %v", err)
	}

	tb.handleUpdate(context.Background(), callbackUpdate(10, 1, callbackClearBuffer))

	if sess.Buffer.Len() != 0 {
		t.Fatalf("expected buffer to be cleared")
	}
	if answers := tb.messenger.callbackAnswers(); len(answers) != 1 || answers[0] != "" {
		t.Fatalf("expected one empty callback answer, got %q", answers)
	}
	if got := lastText(t, tb.messenger); !strings.Contains(got, "Buffer cleared") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestShowBufferCommand(t *testing.T) {
	tb := newTestBot(t)
	sess := tb.authorize(10)
	if err := sess.Buffer.Append("eins zwei drei"); err != nil {
		t.Fatalf("append: %v", err)
	}

	tb.handleUpdate(context.Background(), textUpdate(10, 1, "/buffer"))

	texts := tb.messenger.texts()
	if len(texts) != 2 {
		t.Fatalf("expected header and contents, got %q", texts)
	}
	if !strings.Contains(texts[0], "1 article") || !strings.Contains(texts[0], "3 words") {
		t.Fatalf("unexpected header: %q", texts[0])
	}
	if texts[1] != "eins zwei drei" {
		t.Fatalf("unexpected contents: %q", texts[1])
	}
}

func TestCallbackRequiresLogin(t *testing.T) {
	tb := newTestBot(t)

	tb.handleUpdate(context.Background(), callbackUpdate(10, 1, callbackGenerate))

	answers := tb.messenger.callbackAnswers()
	if len(answers) != 1 || !strings.Contains(answers[0], "Password required") {
		t.Fatalf("unexpected callback answers: %q", answers)
	}
	if len(tb.client.calls) != 0 {
		t.Fatalf("expected no provider calls")
	}
}
