package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"rewriter/internal/provider"
)

// Stage is one step of the rewriting pipeline.
type Stage int

const (
	Cleanup Stage = iota + 1
	Translate
	Rewrite
)

func (s Stage) String() string {
	switch s {
	case Cleanup:
		return "cleanup"
	case Translate:
		return "translate"
	case Rewrite:
		return "rewrite"
	default:
		return "unknown"
	}
}

// Selection is what a stage needs to issue its provider call.
type Selection struct {
	Provider     provider.Provider
	Model        string
	SystemPrompt string
}

type Entry struct {
	Provider provider.Provider
	Model    string
	Prompt   string
}

// RewriteEntry carries two prompt variants: one for a single buffered
// article and one for several. MultiPrompt may contain CountPlaceholder.
type RewriteEntry struct {
	Provider     provider.Provider
	Model        string
	SinglePrompt string
	MultiPrompt  string
}

type Catalog struct {
	Cleanup   Entry
	Translate Entry
	Rewrite   RewriteEntry
}

// PromptFor returns the provider, model and system prompt of a stage.
// articleCount only matters for Rewrite.
func (c *Catalog) PromptFor(stage Stage, articleCount int) (Selection, error) {
	switch stage {
	case Cleanup:
		return c.Cleanup.selection(), nil
	case Translate:
		return c.Translate.selection(), nil
	case Rewrite:
		prompt := c.Rewrite.SinglePrompt
		if articleCount > 1 {
			prompt = strings.ReplaceAll(c.Rewrite.MultiPrompt, CountPlaceholder, strconv.Itoa(articleCount))
		}

		return Selection{
			Provider:     c.Rewrite.Provider,
			Model:        c.Rewrite.Model,
			SystemPrompt: prompt,
		}, nil
	default:
		return Selection{}, fmt.Errorf("unknown stage: %d", stage)
	}
}

func (e Entry) selection() Selection {
	return Selection{
		Provider:     e.Provider,
		Model:        e.Model,
		SystemPrompt: e.Prompt,
	}
}
