package translate

import "fmt"

// ProviderError wraps a failed model call. The cause is the SDK error,
// unchanged.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ResponseError reports a model response that is not valid JSON or does
// not match the requested schema.
type ResponseError struct {
	Locale string
	Body   string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Locale != "" {
		return fmt.Sprintf("invalid model response for %s: %v", e.Locale, e.Err)
	}
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }
