package config

import "os"

// ProviderEnv lists the environment variables holding each provider's key.
var ProviderEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"google":    {"GOOGLE_GENERATIVE_AI_API_KEY", "GEMINI_API_KEY"},
	"xai":       {"XAI_API_KEY"},
	"mistral":   {"MISTRAL_API_KEY"},
	"groq":      {"GROQ_API_KEY"},
	"cerebras":  {"CEREBRAS_API_KEY"},
	"azure":     {"AZURE_API_KEY"},
}

// KeyStore returns a stored API key for a provider.
type KeyStore func(provider string) (string, bool)

// ResolveAPIKey returns the key for the configured provider: the explicit
// option first, then the provider's variables, then LIN_API_KEY, then the
// store. An empty result lets the provider SDK fall back to its own lookup.
func (o Options) ResolveAPIKey(store KeyStore) string {
	if o.APIKey != "" {
		return o.APIKey
	}
	for _, env := range ProviderEnv[o.Provider] {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if v := os.Getenv("LIN_API_KEY"); v != "" {
		return v
	}
	if store != nil {
		if v, ok := store(o.Provider); ok {
			return v
		}
	}
	return ""
}
