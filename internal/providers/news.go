package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/folio/internal/models"
)

// maxArticles caps how many articles a fetch normalizes, regardless of how
// many the provider returns.
const maxArticles = 10

// NewsAdapter fetches articles from a NewsAPI-style endpoint. Two endpoint
// modes are supported: "top-headlines" (country/category) and "everything"
// (free-text search with a date range).
type NewsAdapter struct {
	client
}

// NewNewsAdapter creates a news adapter.
func NewNewsAdapter(opts Options) *NewsAdapter {
	return &NewsAdapter{client: newClient("news", opts)}
}

// Name identifies the adapter in result metadata.
func (a *NewsAdapter) Name() string { return "news" }

// Fetch requests articles. The response is a Failure whenever the
// provider's own status field is not "ok", even on HTTP 200.
func (a *NewsAdapter) Fetch(ctx context.Context, source *models.DataSource, params map[string]string) (*models.FetchResult, error) {
	endpoint := firstNonEmpty(params["endpoint"], "top-headlines")

	query := a.buildQuery(source, params, endpoint)
	headers := map[string]string{"X-Api-Key": source.APIKey}

	reqURL := strings.TrimSuffix(source.Endpoint, "/") + "/" + endpoint
	status, parsed, _, err := a.do(ctx, http.MethodGet, reqURL, query, headers, nil)
	if err != nil {
		return nil, err
	}

	meta := a.metadata(status)
	body, _ := parsed.(map[string]interface{})

	if status != http.StatusOK || dig(body, "status") != "ok" {
		return models.FailureResult(
			providerMessage(body, "message", fmt.Sprintf("request failed with status %d", status)),
			meta,
		), nil
	}

	articles, _ := body["articles"].([]interface{})
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	normalized := make([]interface{}, 0, len(articles))
	for _, raw := range articles {
		article, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		normalized = append(normalized, map[string]interface{}{
			"title":        article["title"],
			"description":  article["description"],
			"url":          article["url"],
			"url_to_image": article["urlToImage"],
			"published_at": article["publishedAt"],
			"source_name":  dig(article, "source", "name"),
			"author":       article["author"],
			"content":      article["content"],
		})
	}

	data := map[string]interface{}{
		"articles": normalized,
		"count":    len(normalized),
	}

	return models.SuccessResult(data, meta), nil
}

func (a *NewsAdapter) buildQuery(source *models.DataSource, params map[string]string, endpoint string) url.Values {
	query := url.Values{}

	if endpoint == "top-headlines" {
		query.Set("country", firstNonEmpty(params["country"], source.ConfigString("country"), "us"))
		if category := params["category"]; category != "" {
			query.Set("category", category)
		}
	}

	if q := params["query"]; q != "" {
		query.Set("q", q)
	}
	if from := params["from"]; from != "" {
		query.Set("from", from)
	}
	if to := params["to"]; to != "" {
		query.Set("to", to)
	}
	query.Set("language", firstNonEmpty(params["language"], source.ConfigString("language"), "en"))
	query.Set("sortBy", firstNonEmpty(params["sort_by"], "publishedAt"))
	query.Set("pageSize", firstNonEmpty(params["page_size"], "5"))

	return query
}
