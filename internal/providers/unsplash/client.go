package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	accessKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Unsplash
func NewClient(accessKey string) *Client {
	return &Client{
		accessKey:  accessKey,
		apiURL:     "https://api.unsplash.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchPhotos ищет фотографии по запросу для обложек статей блога
func (c *Client) SearchPhotos(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if perPage <= 0 || perPage > 30 {
		perPage = 12
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}
