package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rewriter/internal/buffer"
	"rewriter/internal/domain"
	"rewriter/internal/prompts"
	"rewriter/internal/provider"
	"rewriter/internal/session"
)

var (
	ErrEmptyBuffer     = errors.New("article buffer is empty")
	ErrEmptyCompletion = errors.New("the model returned no text")
)

// LogSink receives one record per successful generation.
type LogSink interface {
	Insert(ctx context.Context, record domain.RewriteLog) error
}

// NopSink drops every record.
type NopSink struct{}

func (NopSink) Insert(context.Context, domain.RewriteLog) error { return nil }

// Result is the outcome of a successful generation.
type Result struct {
	Article       string
	Translated    string
	WritingPrompt string
	ArticleCount  int
}

// Orchestrator runs the cleanup, translate and rewrite stages against a
// session's buffer. It is stateless apart from its collaborators, so one
// instance serves every session.
type Orchestrator struct {
	client   provider.Client
	catalog  *prompts.Catalog
	keys     map[provider.Provider]string
	sink     LogSink
	location *time.Location
	now      func() time.Time
	log      *slog.Logger
}

func New(
	client provider.Client,
	catalog *prompts.Catalog,
	keys map[provider.Provider]string,
	sink LogSink,
	location *time.Location,
	log *slog.Logger,
) *Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	if location == nil {
		location = time.UTC
	}

	return &Orchestrator{
		client:   client,
		catalog:  catalog,
		keys:     keys,
		sink:     sink,
		location: location,
		now:      time.Now,
		log:      log,
	}
}

// RunCleanup cleans rawText and appends the result to the session buffer.
// The buffer is only touched when the provider call succeeds.
func (o *Orchestrator) RunCleanup(ctx context.Context, sess *session.Session, rawText string) (string, error) {
	if strings.TrimSpace(rawText) == "" {
		return "", buffer.ErrEmptyInput
	}

	cleaned, err := o.call(ctx, prompts.Cleanup, 0, rawText)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cleaned) == "" {
		return "", fmt.Errorf("%s: %w", prompts.Cleanup, ErrEmptyCompletion)
	}

	if err = sess.Buffer.Append(cleaned); err != nil {
		return "", fmt.Errorf("append cleaned text: %w", err)
	}

	o.log.InfoContext(ctx, "Article is added to buffer",
		"sessionID", sess.ID,
		"articleCount", sess.Buffer.Len(),
		"rawLen", len(rawText),
		"cleanedLen", len(cleaned))

	return cleaned, nil
}

// RunGenerate translates the buffered articles and rewrites the translation
// into one article. The buffer is never modified. A translate failure
// aborts the run before the rewrite call is issued.
func (o *Orchestrator) RunGenerate(ctx context.Context, sess *session.Session) (Result, error) {
	contents, count := sess.Buffer.Snapshot()
	if strings.TrimSpace(contents) == "" {
		return Result{}, ErrEmptyBuffer
	}

	translated, err := o.call(ctx, prompts.Translate, count, contents)
	if err != nil {
		return Result{}, err
	}

	writing, err := o.catalog.PromptFor(prompts.Rewrite, count)
	if err != nil {
		return Result{}, fmt.Errorf("select %s prompt: %w", prompts.Rewrite, err)
	}

	generated, err := o.send(ctx, prompts.Rewrite, writing, translated)
	if err != nil {
		return Result{}, err
	}

	record := domain.RewriteLog{
		ID:               uuid.New().String(),
		SessionID:        sess.ID,
		UserPrompt:       contents,
		TranslatedText:   translated,
		WritingPrompt:    writing.SystemPrompt,
		GeneratedArticle: generated,
		Timestamp:        o.now().In(o.location).Format(time.RFC3339Nano),
	}

	// Audit logging is best effort: the article is returned either way.
	if sinkErr := o.sink.Insert(ctx, record); sinkErr != nil {
		o.log.WarnContext(ctx, "Failed to write rewrite log",
			"error", sinkErr,
			"sessionID", sess.ID,
			"recordID", record.ID)
	}

	o.log.InfoContext(ctx, "Article is generated",
		"sessionID", sess.ID,
		"recordID", record.ID,
		"articleCount", count,
		"translatedLen", len(translated),
		"generatedLen", len(generated))

	return Result{
		Article:       generated,
		Translated:    translated,
		WritingPrompt: writing.SystemPrompt,
		ArticleCount:  count,
	}, nil
}

func (o *Orchestrator) call(ctx context.Context, stage prompts.Stage, count int, userPrompt string) (string, error) {
	selection, err := o.catalog.PromptFor(stage, count)
	if err != nil {
		return "", fmt.Errorf("select %s prompt: %w", stage, err)
	}

	return o.send(ctx, stage, selection, userPrompt)
}

func (o *Orchestrator) send(
	ctx context.Context,
	stage prompts.Stage,
	selection prompts.Selection,
	userPrompt string,
) (string, error) {
	start := time.Now()

	text, err := o.client.Call(ctx, provider.Request{
		Provider:     selection.Provider,
		APIKey:       o.keys[selection.Provider],
		Model:        selection.Model,
		SystemPrompt: selection.SystemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		o.log.ErrorContext(ctx, "Provider call failed",
			"error", err,
			"stage", stage.String(),
			"provider", selection.Provider.String(),
			"model", selection.Model,
			"latency", time.Since(start))

		return "", fmt.Errorf("%s: %w", stage, err)
	}

	o.log.DebugContext(ctx, "Provider call succeeded",
		"stage", stage.String(),
		"provider", selection.Provider.String(),
		"model", selection.Model,
		"latency", time.Since(start))

	return text, nil
}
