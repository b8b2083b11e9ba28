package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rettend/lin/config"
)

// ---------------------------------------------------------------------------
// Model provider
// ---------------------------------------------------------------------------

// Sampling holds the optional generation parameters. Nil fields are left to
// the provider default.
type Sampling struct {
	Temperature      *float64
	MaxOutputTokens  *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Seed             *int
}

// Request is one structured generation call.
type Request struct {
	System string
	User   string
	// Schema is the JSON schema the reply must satisfy.
	Schema map[string]any
	// Mode is auto, json or tool.
	Mode     string
	Sampling Sampling
}

// Provider generates a JSON reply for a request. The reply is returned as
// text; the orchestrator strips fences and validates it.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Settings selects and authenticates a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	// Azure only.
	ResourceName           string
	APIVersion             string
	UseDeploymentBasedURLs bool

	// Timeout bounds each request. Zero means two minutes.
	Timeout time.Duration
}

// SettingsFor builds provider settings from the configured options.
func SettingsFor(o config.Options, apiKey string) Settings {
	return Settings{
		Provider:               o.Provider,
		Model:                  o.Model,
		APIKey:                 apiKey,
		BaseURL:                o.BaseURL,
		ResourceName:           o.ResourceName,
		APIVersion:             o.APIVersion,
		UseDeploymentBasedURLs: o.UseDeploymentBasedURLs,
	}
}

// SamplingFor copies the generation parameters out of the options.
func SamplingFor(o config.Options) Sampling {
	return Sampling{
		Temperature:      o.Temperature,
		MaxOutputTokens:  o.MaxOutputTokens,
		TopP:             o.TopP,
		FrequencyPenalty: o.FrequencyPenalty,
		PresencePenalty:  o.PresencePenalty,
		Seed:             o.Seed,
	}
}

// Base URLs of the OpenAI-compatible providers.
var compatibleBaseURLs = map[string]string{
	"openai":   "",
	"xai":      "https://api.x.ai/v1",
	"mistral":  "https://api.mistral.ai/v1",
	"groq":     "https://api.groq.com/openai/v1",
	"cerebras": "https://api.cerebras.ai/v1",
}

// NewProvider returns the client for s.Provider. A missing provider or model
// and an unknown provider are configuration errors.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	if s.Provider == "" || s.Model == "" {
		return nil, &config.ConfigurationError{
			Field: "options",
			Msg:   fmt.Sprintf("provider or model missing in options (provider: %q, model: %q)", s.Provider, s.Model),
		}
	}

	hc := makeHTTPClient(s.Timeout)
	if base, ok := compatibleBaseURLs[s.Provider]; ok {
		if s.BaseURL != "" {
			base = s.BaseURL
		}
		return newOpenAI(s, base, hc), nil
	}

	switch s.Provider {
	case "azure":
		return newAzure(s, hc)
	case "anthropic":
		return newAnthropic(s, hc), nil
	case "google":
		return newGoogle(ctx, s, hc)
	}
	return nil, &config.ConfigurationError{
		Field: "provider",
		Value: s.Provider,
		Valid: config.Providers,
		Msg:   "unsupported provider: " + s.Provider,
	}
}

// makeHTTPClient honors HTTP_PROXY/HTTPS_PROXY through the default transport.
func makeHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
