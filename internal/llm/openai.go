package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const nerSystemPrompt = `あなたは日本語テキストから地名を抽出する専門家です。` +
	`与えられた文に出現する地名だけを、本文の表記そのままで抽出してください。` +
	`人名・植物名・方角は含めません。` +
	`JSON配列のみで回答してください。例: ["東京","鎌倉"]`

// OpenAIProvider implements Provider on the Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// FindPlaces asks the model for the place names in sentence and parses the
// JSON array it returns.
func (p *OpenAIProvider) FindPlaces(ctx context.Context, sentence string) ([]string, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: nerSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: sentence,
			},
		},
		MaxTokens:   300,
		Temperature: 0, // extraction must be repeatable
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parsePlaceArray(resp.Choices[0].Message.Content)
}

// parsePlaceArray reads a JSON string array out of the model reply, tolerating
// code fences and surrounding prose.
func parsePlaceArray(reply string) ([]string, error) {
	s := strings.TrimSpace(reply)
	if i := strings.IndexByte(s, '['); i >= 0 {
		if j := strings.LastIndexByte(s, ']'); j > i {
			s = s[i : j+1]
		}
	}
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}
