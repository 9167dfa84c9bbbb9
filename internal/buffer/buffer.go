package buffer

import (
	"errors"
	"strings"
)

// Separator is inserted between two buffered articles.
const Separator = "\n\n------------------------------\n\n"

var ErrEmptyInput = errors.New("input text is empty")

// ArticleBuffer accumulates cleaned articles for one session.
// The zero value is an empty buffer. It is not safe for concurrent use.
type ArticleBuffer struct {
	contents string
	count    int
}

// Append adds text as a new article. Blank text is rejected with
// ErrEmptyInput and leaves the buffer unchanged.
func (b *ArticleBuffer) Append(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	if b.count > 0 {
		b.contents += Separator
	}
	b.contents += text
	b.count++

	return nil
}

func (b *ArticleBuffer) Clear() {
	b.contents = ""
	b.count = 0
}

func (b *ArticleBuffer) Snapshot() (string, int) {
	return b.contents, b.count
}

func (b *ArticleBuffer) Len() int {
	return b.count
}
