package githubapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/pkg/log"
)

type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses = append(s.pauses, d)
	return nil
}

func newTestCaller(t *testing.T, srv *httptest.Server, tokens ...string) (*Caller, *sleepRecorder) {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	config.GithubApi.RestUrl = srv.URL
	config.GithubApi.GraphqlUrl = srv.URL + "/graphql"

	pool, err := credential.NewPool(tokens)
	require.NoError(t, err)
	logger, _ := log.NewCslLogger("error")

	c := NewCaller(logger, config, pool, nil)
	rec := &sleepRecorder{}
	c.Sleep = rec.sleep
	return c, rec
}

func bearer(r *http.Request) string {
	return r.Header.Get("Authorization")[len("Bearer "):]
}

func TestRequestRotatesOnUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "bad", "good")
	_, err := c.Request(context.Background(), http.MethodGet, "/rate_limit", nil, nil)
	require.NoError(t, err)

	idx, cred := c.Pool.Current()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "good", cred.Token)
	assert.Empty(t, rec.pauses, "401 retries immediately")
}

func TestRequestAllCredentialsRejectedIsFatal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := newTestCaller(t, srv, "a", "b")
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, credential.ErrNoUsableCredentials)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 2, calls)
}

func TestRequestForbiddenRotatesAndCoolsDown(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, bearer(r))
		if bearer(r) == "a" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "a", "b")
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []time.Duration{5 * time.Second}, rec.pauses)
}

func TestRequestServerErrorsBackOffLinearly(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "a")
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.pauses)
}

func TestRequestClientTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "a")
	c.Client.Timeout = 50 * time.Millisecond
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, IsFatal(err))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.pauses)
}

func TestRequestCancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		cancel()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "a")
	_, err := c.Request(ctx, http.MethodGet, "/x", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.pauses)
}

func TestRequestNotFoundIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "a")
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.pauses)
}

func TestLowQuotaSwitchesToCredentialWithHeadroom(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, bearer(r))
		if bearer(r) == "first" {
			w.Header().Set("X-RateLimit-Remaining", "50")
		} else {
			w.Header().Set("X-RateLimit-Remaining", "4999")
		}
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "first", "second")
	c.Pool.RecordQuota(1, 5000, time.Now().Add(time.Hour))

	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	_, err = c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, seen)
	assert.Empty(t, rec.pauses)
}

func TestLowQuotaSingleCredentialWaitsForReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(2 * time.Minute)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "100")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, rec := newTestCaller(t, srv, "only")
	c.Now = func() time.Time { return now }

	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2*time.Minute + 5*time.Second}, rec.pauses)
}

func TestQuotaWaitHasFloor(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 10*time.Second, QuotaWait(now.Add(-time.Minute), now))
	assert.Equal(t, 10*time.Second, QuotaWait(time.Time{}, now))
	assert.Equal(t, 65*time.Second, QuotaWait(now.Add(time.Minute), now))
}

func TestGraphQLPayloadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)
		w.Write([]byte(`{"data":null,"errors":[{"message":"Something went wrong"}]}`))
	}))
	defer srv.Close()

	c, _ := newTestCaller(t, srv, "a")
	var out SearchData
	err := c.GraphQL(context.Background(), "query { viewer { login } }", nil, &out)

	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, []string{"Something went wrong"}, gqlErr.Messages)
}

func TestGraphQLHTTPFailureIsGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newTestCaller(t, srv, "a")
	err := c.GraphQL(context.Background(), "query {}", nil, &SearchData{})

	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.False(t, IsFatal(err))
}

func TestGetFileAndListDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/site/contents/package.json":
			// {"name":"site"} split across lines the way GitHub wraps it
			w.Write([]byte(`{"type":"file","encoding":"base64","path":"package.json","content":"eyJuYW1lIjoi\nc2l0ZSJ9\n"}`))
		case "/repos/acme/site/contents/.github/workflows":
			w.Write([]byte(`[{"type":"file","name":"ci.yml","path":".github/workflows/ci.yml"}]`))
		case "/repos/acme/site/contents/src":
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, _ := newTestCaller(t, srv, "a")
	ctx := context.Background()

	content, err := c.GetFile(ctx, "acme/site", "package.json")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"site"}`, content)

	entries, err := c.ListDir(ctx, "acme/site", ".github/workflows")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ci.yml", entries[0].Name)

	_, err = c.GetFile(ctx, "acme/site", "src")
	assert.True(t, IsNotFound(err), "a directory is not a file")

	_, err = c.GetFile(ctx, "acme/site", "missing.txt")
	assert.True(t, IsNotFound(err))
}

func TestSplitFullName(t *testing.T) {
	owner, name, err := SplitFullName("acme/site")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "site", name)

	_, _, err = SplitFullName("acme")
	assert.Error(t, err)
}
