package openai_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/worldwire/clients"
)

type OpenAIClient struct {
	*clients.BaseClient
	model string
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := &OpenAIClient{
		BaseClient: clients.NewBaseClient(BaseURL),
		model:      DefaultModel,
	}

	client.SetHeader(AuthorizationHeader, "Bearer "+apiKey)
	client.SetHeader(ContentTypeHeader, "application/json")
	client.SetTimeout(20 * time.Second)

	return client
}

// SetModel overrides the default completion model.
func (c *OpenAIClient) SetModel(model string) {
	c.model = model
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Usage reports token consumption for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete runs one chat completion. Low temperature keeps the output
// format stable enough to parse.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, Usage, error) {
	reqBody := completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	respBody, err := c.Post(ctx, ChatCompletionsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", Usage{}, err
	}

	var resp completionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", Usage{}, fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage, fmt.Errorf("completion response contained no choices")
	}

	return resp.Choices[0].Message.Content, resp.Usage, nil
}
