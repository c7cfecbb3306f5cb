package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperClient queries the Serper search API. Failures and non-2xx
// responses are logged and yield an empty result list.
type SerperClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		apiKey:     apiKey,
		endpoint:   serperEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []Result `json:"organic"`
}

func (c *SerperClient) Search(ctx context.Context, query string) []Result {
	body, err := json.Marshal(serperRequest{Query: query, Num: maxResults})
	if err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("serper search failed: %v", err)
		return nil
	}
	defer func(resp *http.Response) {
		err := resp.Body.Close()
		if err != nil {
		}
	}(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("serper search failed: status %d", resp.StatusCode)
		return nil
	}

	var out serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("serper decode failed: %v", err)
		return nil
	}
	return cap5(out.Organic)
}
