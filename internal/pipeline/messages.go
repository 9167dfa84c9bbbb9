package pipeline

import (
	"errors"
	"fmt"

	"rewriter/internal/buffer"
	"rewriter/internal/provider"
)

// UserMessage turns a pipeline error into a sentence that can be shown to
// the user as is.
func UserMessage(err error) string {
	var providerErr *provider.ProviderError
	var unsupportedErr *provider.UnsupportedProviderError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, buffer.ErrEmptyInput):
		return "Please paste some article text first."
	case errors.Is(err, ErrEmptyBuffer):
		return "No articles in buffer. Please add articles by sending their text first."
	case errors.Is(err, ErrEmptyCompletion):
		return "The model returned no text. Please try again."
	case errors.As(err, &providerErr):
		return fmt.Sprintf("An error occurred: %s", providerErr.Error())
	case errors.As(err, &unsupportedErr):
		return fmt.Sprintf("Configuration error: %s", unsupportedErr.Error())
	default:
		return fmt.Sprintf("An error occurred: %s", err.Error())
	}
}
