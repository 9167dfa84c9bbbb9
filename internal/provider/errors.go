package provider

import "fmt"

// ProviderError is returned when an upstream call completes with a non-2xx
// status. Body holds the raw response body.
type ProviderError struct {
	Provider Provider
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.Status, e.Body)
}

type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %q", e.Name)
}
