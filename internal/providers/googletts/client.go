package googletts

import (
	"bytes"
	"context"
	"encoding/base64"
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

// NewClient создаёт новый клиент Google Cloud Text-to-Speech
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     "https://texttospeech.googleapis.com/v1/text:synthesize",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Synthesize озвучивает текст указанным голосом и возвращает MP3-аудио
func (c *Client) Synthesize(ctx context.Context, text, voiceName string) ([]byte, error) {
	reqBody := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{LanguageCode: "en-US", Name: voiceName},
		AudioConfig: audioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var body synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.AudioContent == "" {
		return nil, errors.New("empty audio content")
	}

	return base64.StdEncoding.DecodeString(body.AudioContent)
}
