package githubapi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuth: token rejected (401). The caller rotates to the next credential.
	ErrAuth = errors.New("github: bad credentials")
	// ErrRateLimit: quota exhausted (403/429). The caller rotates and backs off.
	ErrRateLimit = errors.New("github: rate limit exceeded")
	// ErrNotFound: resource absent (404). Optional probes treat it as "no evidence".
	ErrNotFound = errors.New("github: not found")
)

// TransportError covers timeouts, connection failures and unexpected statuses.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("github: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GraphQLError is any failure of the GraphQL endpoint: non-2xx after retries,
// undecodable body, or a payload carrying an "errors" array.
type GraphQLError struct {
	Messages []string
	Err      error
}

func (e *GraphQLError) Error() string {
	if len(e.Messages) > 0 {
		return "github graphql: " + strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("github graphql: %v", e.Err)
}

func (e *GraphQLError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the probed resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
