package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rewriter/internal/domain"
)

// Insert appends a rewrite log row. It is the only write path; rows are
// never read back, updated or deleted by the application.
func (d *Database) Insert(ctx context.Context, record domain.RewriteLog) error {
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("record ID is empty")
	}

	query := `insert into rewrite_logs
	(id, session_id, user_prompt, translated_text, writing_prompt, generated_article, timestamp)
	values (?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.SessionID,
		record.UserPrompt,
		record.TranslatedText,
		record.WritingPrompt,
		record.GeneratedArticle,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert rewrite log: %w", err)
	}

	return nil
}
