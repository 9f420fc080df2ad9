package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client — клиент для chat-completions совместимых API
// (OpenAI и Deepseek используют один и тот же формат запросов).
type Client struct {
	name       string
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewOpenAI создаёт клиент для OpenAI
func NewOpenAI(apiKey string) *Client {
	return &Client{
		name:       "openai",
		apiKey:     apiKey,
		apiURL:     "https://api.openai.com/v1/chat/completions",
		model:      "gpt-4o-mini",
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// NewDeepseek создаёт клиент для Deepseek
func NewDeepseek(apiKey string) *Client {
	return &Client{
		name:       "deepseek",
		apiKey:     apiKey,
		apiURL:     "https://api.deepseek.com/chat/completions",
		model:      "deepseek-chat",
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name возвращает имя провайдера для логов и цепочки fallback
func (c *Client) Name() string { return c.name }

const summaryPrompt = "Summarize the following text concisely, preserving the key points and overall structure. Reply with the summary only."

// Summarize отправляет текст на резюмирование и возвращает результат
// вместе с количеством потраченных токенов.
func (c *Client) Summarize(ctx context.Context, text string) (*Summary, error) {
	reqBody := completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: summaryPrompt},
			{Role: "user", Content: text},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var body completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Choices) == 0 {
		return nil, errors.New("empty completion result")
	}

	return &Summary{
		Text:         body.Choices[0].Message.Content,
		InputTokens:  body.Usage.PromptTokens,
		OutputTokens: body.Usage.CompletionTokens,
	}, nil
}
