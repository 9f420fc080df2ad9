package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Deepgram
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     "https://api.deepgram.com/v1",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Transcribe отправляет аудио на распознавание и возвращает расшифровку
// с фактической длительностью, которую сообщает провайдер.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (*Transcription, error) {
	url := c.apiURL + "/listen?model=nova-2&smart_format=true&punctuate=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var body listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Results.Channels) == 0 || len(body.Results.Channels[0].Alternatives) == 0 {
		return nil, errors.New("empty transcription result")
	}

	alt := body.Results.Channels[0].Alternatives[0]
	return &Transcription{
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
		Duration:   body.Metadata.Duration,
	}, nil
}
