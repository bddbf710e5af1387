package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thep200/a11y-miner/internal/credential"
)

type jsonRaw = json.RawMessage

// GraphQL posts {query, variables} to the GraphQL endpoint and decodes "data"
// into out. Every failure is returned as *GraphQLError; a fully rejected
// credential pool stays reachable through errors.Is.
func (c *Caller) GraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return &GraphQLError{Err: err}
	}

	resp, err := c.Request(ctx, http.MethodPost, c.Config.GithubApi.GraphqlUrl, nil, body)
	if err != nil {
		return &GraphQLError{Err: err}
	}

	var env graphQLEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return &GraphQLError{Err: err}
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return &GraphQLError{Messages: msgs, Err: errors.New("graphql payload errors")}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &GraphQLError{Err: errors.New("graphql response without data")}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &GraphQLError{Err: err}
	}
	return nil
}

// IsFatal reports errors that must stop the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, credential.ErrNoUsableCredentials)
}
