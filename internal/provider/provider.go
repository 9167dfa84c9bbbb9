package provider

import (
	"context"
	"strings"
)

// Provider identifies an upstream LLM vendor.
type Provider int

const (
	// OpenAI speaks the chat-completions protocol.
	OpenAI Provider = iota + 1
	// Anthropic speaks the messages protocol.
	Anthropic
)

func (p Provider) String() string {
	switch p {
	case OpenAI:
		return "openai"
	case Anthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	return p == OpenAI || p == Anthropic
}

// Parse resolves a provider name. Matching is case-insensitive.
func Parse(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return OpenAI, nil
	case "anthropic":
		return Anthropic, nil
	default:
		return 0, &UnsupportedProviderError{Name: name}
	}
}

// Request is a single system+user prompt call. It is built fresh for every
// call and never stored.
type Request struct {
	Provider     Provider
	APIKey       string
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Client sends one request and returns the completion text.
type Client interface {
	Call(ctx context.Context, req Request) (string, error)
}

// Router dispatches requests to the backend registered for their provider.
type Router struct {
	backends map[Provider]Client
}

func NewRouter(openAI Client, anthropic Client) *Router {
	return &Router{
		backends: map[Provider]Client{
			OpenAI:    openAI,
			Anthropic: anthropic,
		},
	}
}

func (r *Router) Call(ctx context.Context, req Request) (string, error) {
	if !req.Provider.Valid() {
		return "", &UnsupportedProviderError{Name: req.Provider.String()}
	}

	backend := r.backends[req.Provider]
	if backend == nil {
		return "", &UnsupportedProviderError{Name: req.Provider.String()}
	}

	return backend.Call(ctx, req)
}
