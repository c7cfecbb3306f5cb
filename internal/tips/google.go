package tips

import (
	"context"
	"fmt"
	"log"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleClient uses the Google Custom Search JSON API as the tips backend.
// It authenticates with an API key and is scoped to one search engine id.
type GoogleClient struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogleClient(ctx context.Context, apiKey, searchEngineID string) (*GoogleClient, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("init custom search service: %w", err)
	}
	return &GoogleClient{svc: svc, cx: searchEngineID}, nil
}

func (c *GoogleClient) Search(ctx context.Context, query string) []Result {
	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(maxResults).Context(ctx).Do()
	if err != nil {
		log.Printf("custom search failed: %v", err)
		return nil
	}
	var out []Result
	for _, item := range resp.Items {
		out = append(out, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return cap5(out)
}
