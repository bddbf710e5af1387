// Các DTO ánh xạ phản hồi REST và GraphQL của GitHub

package githubapi

// REST /search/repositories
type SearchResponse struct {
	TotalCount        int              `json:"total_count"`
	IncompleteResults bool             `json:"incomplete_results"`
	Items             []RestRepository `json:"items"`
}

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type RestRepository struct {
	Id              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Owner           Owner    `json:"owner"`
	Description     *string  `json:"description"`
	Homepage        *string  `json:"homepage"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int64    `json:"stargazers_count"`
	PushedAt        string   `json:"pushed_at"`
	Archived        bool     `json:"archived"`
	Fork            bool     `json:"fork"`
}

// REST /repos/{owner}/{repo}/contents/{path} and /readme
type ContentEntry struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GraphQL search
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLEnvelope struct {
	Data   jsonRaw        `json:"data"`
	Errors []graphQLIssue `json:"errors"`
}

type graphQLIssue struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type SearchData struct {
	RateLimit *struct {
		Remaining int    `json:"remaining"`
		ResetAt   string `json:"resetAt"`
	} `json:"rateLimit"`
	Search *struct {
		RepositoryCount int `json:"repositoryCount"`
		PageInfo        struct {
			HasNextPage bool    `json:"hasNextPage"`
			EndCursor   *string `json:"endCursor"`
		} `json:"pageInfo"`
		Nodes []GraphQLRepository `json:"nodes"`
	} `json:"search"`
}

type GraphQLRepository struct {
	NameWithOwner   string  `json:"nameWithOwner"`
	StargazerCount  int64   `json:"stargazerCount"`
	Description     *string `json:"description"`
	HomepageUrl     *string `json:"homepageUrl"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
	PushedAt         string `json:"pushedAt"`
	DefaultBranchRef *struct {
		Target *struct {
			CommittedDate string `json:"committedDate"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	IsArchived bool `json:"isArchived"`
	IsFork     bool `json:"isFork"`
}
