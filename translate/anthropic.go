package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/rettend/lin/config"
)

// toolName names the forced tool and the structured output schema.
const toolName = "translations"

// anthropicMaxTokens is used when maxOutputTokens is not configured; the
// messages API requires a value.
const anthropicMaxTokens = 8192

type anthropicProvider struct {
	model  string
	client anthropic.Client
}

func newAnthropic(s Settings, hc *http.Client) *anthropicProvider {
	opts := []option.RequestOption{option.WithHTTPClient(hc)}
	if s.APIKey != "" {
		opts = append(opts, option.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &anthropicProvider{model: s.Model, client: anthropic.NewClient(opts...)}
}

// Generate forces a call to the translations tool in auto and tool mode,
// and asks for plain JSON text in json mode.
func (p *anthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	system := req.System
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}

	useTool := req.Mode != config.ModeJSON
	if useTool {
		var schema anthropic.ToolInputSchemaParam
		data, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("marshaling tool schema: %w", err)
		}
		if err := json.Unmarshal(data, &schema); err != nil {
			return "", fmt.Errorf("unmarshaling tool schema: %w", err)
		}
		params.Tools = []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        toolName,
				Description: anthropic.String("Return the translations for every locale."),
				InputSchema: schema,
			},
		}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: toolName},
		}
	} else {
		schema, err := json.Marshal(req.Schema)
		if err != nil {
			return "", err
		}
		system += jsonInstruction(schema)
	}
	params.System = []anthropic.TextBlockParam{{Text: system}}

	s := req.Sampling
	if s.MaxOutputTokens != nil {
		params.MaxTokens = int64(*s.MaxOutputTokens)
	}
	if s.Temperature != nil {
		params.Temperature = anthropic.Float(*s.Temperature)
	}
	if s.TopP != nil {
		params.TopP = anthropic.Float(*s.TopP)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", Model: p.model, Err: err}
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if useTool && b.Name == toolName {
				input, err := json.Marshal(b.Input)
				if err != nil {
					return "", err
				}
				return string(input), nil
			}
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return "", &ProviderError{Provider: "anthropic", Model: p.model, Err: errors.New("no translations in response")}
	}
	return text.String(), nil
}
