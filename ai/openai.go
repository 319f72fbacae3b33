package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIGenerator talks to the chat completions API; images are sent inline as data URLs.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg OpenAIConfig, extra ...option.RequestOption) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIGenerator{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

func (o *OpenAIGenerator) Name() string { return "openai" }

func (o *OpenAIGenerator) ExtractText(ctx context.Context, instruction string, img Image) (string, error) {
	msg := openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(instruction),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: makeDataURL(img.MIMEType, img.Data),
		}),
	})

	text, err := o.complete(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("openai ocr: %w", err)
	}
	return text, nil
}

func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := o.complete(ctx, openai.UserMessage(prompt))
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openai generate: %w", ErrEmptyResponse)
	}
	return text, nil
}

func (o *OpenAIGenerator) complete(ctx context.Context, msgs ...openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
