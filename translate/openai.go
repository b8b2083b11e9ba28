package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/rettend/lin/config"
)

// openAIProvider talks to OpenAI and the providers that speak its chat
// completions API (xai, mistral, groq, cerebras).
type openAIProvider struct {
	name   string
	model  string
	client openai.Client
}

func newOpenAI(s Settings, baseURL string, hc *http.Client) *openAIProvider {
	opts := []option.RequestOption{option.WithHTTPClient(hc)}
	if s.APIKey != "" {
		opts = append(opts, option.WithAPIKey(s.APIKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAIProvider{
		name:   s.Provider,
		model:  s.Model,
		client: openai.NewClient(opts...),
	}
}

func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	params := openai.ChatCompletionNewParams{
		Model: p.model,
	}

	if req.Mode == config.ModeJSON {
		schema, err := json.Marshal(req.Schema)
		if err != nil {
			return "", err
		}
		system += jsonInstruction(schema)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	} else {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   toolName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(req.User),
	}

	s := req.Sampling
	if s.Temperature != nil {
		params.Temperature = openai.Float(*s.Temperature)
	}
	if s.MaxOutputTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*s.MaxOutputTokens))
	}
	if s.TopP != nil {
		params.TopP = openai.Float(*s.TopP)
	}
	if s.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*s.FrequencyPenalty)
	}
	if s.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*s.PresencePenalty)
	}
	if s.Seed != nil {
		params.Seed = openai.Int(int64(*s.Seed))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: p.name, Model: p.model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Model: p.model, Err: errors.New("empty completion response")}
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", &ProviderError{Provider: p.name, Model: p.model, Err: errors.New("refused: " + msg.Refusal)}
	}
	return msg.Content, nil
}
