package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// SearchRepositories calls the REST search endpoint for one page, sorted by stars.
// GitHub only serves the first 1000 results of any search.
func (c *Caller) SearchRepositories(ctx context.Context, query string, page, perPage int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprint(perPage))
	params.Set("page", fmt.Sprint(page))

	c.Logger.Debug(ctx, "Calling GitHub REST search: q=%q page=%d", query, page)
	resp, err := c.Request(ctx, http.MethodGet, "/search/repositories?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	raw := &SearchResponse{}
	if err := json.Unmarshal(resp.Body, raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if page*perPage > 1000 {
		c.Logger.Warn(ctx, "GitHub API only provides access to the first 1,000 search results")
	}
	return raw, nil
}
