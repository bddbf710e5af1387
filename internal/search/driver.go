// Package search pages through GitHub repository search, GraphQL first and
// REST when GraphQL fails, and turns both shapes into model.Repository.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/a11y-miner/cfg"
	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/log"
)

// GitHub serves at most this many results for any search.
const searchResultCeiling = 1000

const repositorySearchQuery = `query($q: String!, $first: Int!, $after: String) {
  rateLimit { remaining resetAt }
  search(query: $q, type: REPOSITORY, first: $first, after: $after) {
    repositoryCount
    pageInfo { hasNextPage endCursor }
    nodes {
      ... on Repository {
        nameWithOwner
        stargazerCount
        description
        homepageUrl
        primaryLanguage { name }
        repositoryTopics(first: 20) { nodes { topic { name } } }
        pushedAt
        defaultBranchRef { target { ... on Commit { committedDate } } }
        isArchived
        isFork
      }
    }
  }
}`

// API is the part of the transport the driver needs.
type API interface {
	GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error
	SearchRepositories(ctx context.Context, query string, page, perPage int) (*githubapi.SearchResponse, error)
}

// Page is one page of results. EndCursor is nil after a REST fallback; the
// next page of the same strategy then starts GraphQL from the beginning.
type Page struct {
	Repositories []model.Repository
	HasNextPage  bool
	EndCursor    *string
	TotalCount   int
	Fallback     bool
}

type Driver struct {
	Logger       log.Logger
	API          API
	Metrics      *metrics.Metrics
	Cutoff       time.Time
	PerPage      int
	MaxPages     int
	MinPageYield int
}

func NewDriver(logger log.Logger, config *cfg.Config, api API, m *metrics.Metrics) (*Driver, error) {
	cutoff, err := config.Crawl.Cutoff()
	if err != nil {
		return nil, err
	}
	return &Driver{
		Logger:       logger,
		API:          api,
		Metrics:      m,
		Cutoff:       cutoff,
		PerPage:      config.Crawl.PerPage,
		MaxPages:     config.Crawl.MaxPages,
		MinPageYield: config.Crawl.MinPageYield,
	}, nil
}

// Qualifiers appends the push-date, visibility and ordering filters to a
// strategy's keywords.
func (d *Driver) Qualifiers(keywords string) string {
	return fmt.Sprintf("%s pushed:>%s is:public sort:stars-desc", keywords, d.Cutoff.Format("2006-01-02"))
}

// Search fetches page number page (1-based) of keywords. cursor is the
// GraphQL end cursor of the previous page, nil for the first page.
func (d *Driver) Search(ctx context.Context, keywords string, cursor *string, page int) (*Page, error) {
	q := d.Qualifiers(keywords)
	vars := map[string]interface{}{"q": q, "first": d.PerPage}
	if cursor != nil {
		vars["after"] = *cursor
	}

	var data githubapi.SearchData
	err := d.API.GraphQL(ctx, repositorySearchQuery, vars, &data)
	if err == nil && data.Search == nil {
		err = &githubapi.GraphQLError{Err: errors.New("response without search field")}
	}
	if err == nil {
		if data.RateLimit != nil {
			d.Logger.Debug(ctx, "GraphQL rate limit remaining %d, resets at %s", data.RateLimit.Remaining, data.RateLimit.ResetAt)
		}
		return d.fromGraphQL(&data), nil
	}
	if githubapi.IsFatal(err) || ctx.Err() != nil {
		return nil, err
	}

	d.Logger.Warn(ctx, "GraphQL search failed, falling back to REST for page %d: %v", page, err)
	d.Metrics.Fallback()
	resp, err := d.API.SearchRepositories(ctx, q, page, d.PerPage)
	if err != nil {
		return nil, fmt.Errorf("rest search page %d: %w", page, err)
	}
	return d.fromREST(resp, page), nil
}

func (d *Driver) fromGraphQL(data *githubapi.SearchData) *Page {
	s := data.Search
	p := &Page{
		HasNextPage: s.PageInfo.HasNextPage,
		EndCursor:   s.PageInfo.EndCursor,
		TotalCount:  s.RepositoryCount,
	}
	for _, n := range s.Nodes {
		// search có thể trả về node rỗng cho các kết quả không phải repository
		if n.NameWithOwner == "" {
			continue
		}
		p.Repositories = append(p.Repositories, FromGraphQL(n))
	}
	return p
}

func (d *Driver) fromREST(resp *githubapi.SearchResponse, page int) *Page {
	reachable := resp.TotalCount
	if reachable > searchResultCeiling {
		reachable = searchResultCeiling
	}
	p := &Page{
		HasNextPage: page*d.PerPage < reachable,
		TotalCount:  resp.TotalCount,
		Fallback:    true,
	}
	for _, item := range resp.Items {
		p.Repositories = append(p.Repositories, FromREST(item))
	}
	return p
}

// Stop tells whether the strategy should stop after page number page, and why.
func (d *Driver) Stop(p *Page, page int) (bool, string) {
	n := len(p.Repositories)
	switch {
	case !p.HasNextPage:
		return true, "no next page"
	case n < d.MinPageYield && n < d.PerPage:
		return true, fmt.Sprintf("page yielded only %d repositories", n)
	case d.MaxPages > 0 && page >= d.MaxPages:
		return true, fmt.Sprintf("reached page ceiling %d", d.MaxPages)
	default:
		return false, ""
	}
}
