package search

import (
	"time"

	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/internal/model"
)

// FromGraphQL builds the record from a GraphQL search node. The default branch
// commit date wins over pushedAt when present.
func FromGraphQL(n githubapi.GraphQLRepository) model.Repository {
	r := model.Repository{
		FullName:   n.NameWithOwner,
		Stars:      int(n.StargazerCount),
		LastCommit: ParseTime(n.PushedAt),
		Archived:   n.IsArchived,
		Fork:       n.IsFork,
	}
	r.Description = deref(n.Description)
	r.Homepage = deref(n.HomepageUrl)
	if n.PrimaryLanguage != nil {
		r.Language = n.PrimaryLanguage.Name
	}
	for _, t := range n.RepositoryTopics.Nodes {
		r.Topics = append(r.Topics, t.Topic.Name)
	}
	if n.DefaultBranchRef != nil && n.DefaultBranchRef.Target != nil {
		if t := ParseTime(n.DefaultBranchRef.Target.CommittedDate); !t.IsZero() {
			r.LastCommit = t
		}
	}
	return r
}

// FromREST builds the record from a REST search item. Topics are often absent
// there and stay empty.
func FromREST(item githubapi.RestRepository) model.Repository {
	fullName := item.FullName
	if fullName == "" && item.Owner.Login != "" {
		fullName = item.Owner.Login + "/" + item.Name
	}
	return model.Repository{
		FullName:    fullName,
		Stars:       int(item.StargazersCount),
		Description: deref(item.Description),
		Homepage:    deref(item.Homepage),
		Language:    deref(item.Language),
		Topics:      item.Topics,
		LastCommit:  ParseTime(item.PushedAt),
		Archived:    item.Archived,
		Fork:        item.Fork,
	}
}

// ParseTime accepts RFC 3339 timestamps and bare dates; anything else is the
// zero time.
func ParseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
