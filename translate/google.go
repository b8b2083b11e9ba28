package translate

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// googleProvider uses the Gemini API with a response JSON schema in every
// mode.
type googleProvider struct {
	model  string
	client *genai.Client
}

func newGoogle(ctx context.Context, s Settings, hc *http.Client) (*googleProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:     s.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if s.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: s.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &ProviderError{Provider: "google", Model: s.Model, Err: err}
	}
	return &googleProvider{model: s.Model, client: client}, nil
}

func (p *googleProvider) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction:  genai.NewContentFromText(req.System, genai.RoleUser),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: req.Schema,
	}

	s := req.Sampling
	if s.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*s.Temperature))
	}
	if s.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = int32(*s.MaxOutputTokens)
	}
	if s.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*s.TopP))
	}
	if s.FrequencyPenalty != nil {
		cfg.FrequencyPenalty = genai.Ptr(float32(*s.FrequencyPenalty))
	}
	if s.PresencePenalty != nil {
		cfg.PresencePenalty = genai.Ptr(float32(*s.PresencePenalty))
	}
	if s.Seed != nil {
		cfg.Seed = genai.Ptr(int32(*s.Seed))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.User), cfg)
	if err != nil {
		return "", &ProviderError{Provider: "google", Model: p.model, Err: err}
	}
	text := resp.Text()
	if text == "" {
		return "", &ProviderError{Provider: "google", Model: p.model, Err: errors.New("empty response")}
	}
	return text, nil
}
