package translate

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/rettend/lin/config"
)

// azureProvider calls an Azure OpenAI deployment. The model name is the
// deployment name.
type azureProvider struct {
	model  string
	client *goopenai.Client
}

func newAzure(s Settings, hc *http.Client) (*azureProvider, error) {
	base := s.BaseURL
	if base == "" {
		resource := s.ResourceName
		if resource == "" {
			resource = os.Getenv("AZURE_RESOURCE_NAME")
		}
		if resource == "" {
			return nil, &config.ConfigurationError{
				Field: "resourceName",
				Msg:   "azure needs options.resourceName, options.baseURL or AZURE_RESOURCE_NAME",
			}
		}
		base = "https://" + resource + ".openai.azure.com"
	}

	cfg := goopenai.DefaultAzureConfig(s.APIKey, base)
	if s.APIVersion != "" {
		cfg.APIVersion = s.APIVersion
	}
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	cfg.HTTPClient = hc
	return &azureProvider{model: s.Model, client: goopenai.NewClientWithConfig(cfg)}, nil
}

func (p *azureProvider) Generate(ctx context.Context, req Request) (string, error) {
	schema, err := json.Marshal(req.Schema)
	if err != nil {
		return "", err
	}
	r := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   toolName,
				Schema: json.RawMessage(schema),
				Strict: true,
			},
		},
	}

	s := req.Sampling
	if s.Temperature != nil {
		// go-openai drops a zero temperature; the smallest float32 keeps it.
		r.Temperature = float32(*s.Temperature)
		if r.Temperature == 0 {
			r.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if s.MaxOutputTokens != nil {
		r.MaxCompletionTokens = *s.MaxOutputTokens
	}
	if s.TopP != nil {
		r.TopP = float32(*s.TopP)
	}
	if s.FrequencyPenalty != nil {
		r.FrequencyPenalty = float32(*s.FrequencyPenalty)
	}
	if s.PresencePenalty != nil {
		r.PresencePenalty = float32(*s.PresencePenalty)
	}
	if s.Seed != nil {
		seed := *s.Seed
		r.Seed = &seed
	}

	resp, err := p.client.CreateChatCompletion(ctx, r)
	if err != nil {
		return "", &ProviderError{Provider: "azure", Model: p.model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: "azure", Model: p.model, Err: errors.New("empty completion response")}
	}
	return resp.Choices[0].Message.Content, nil
}
