package probe

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/a11y-miner/internal/credential"
	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/internal/probe/probetest"
	"github.com/thep200/a11y-miner/pkg/log"
)

const repoName = "acme/site"

func testLogger() log.Logger {
	l, _ := log.NewCslLogger("error")
	return l
}

func TestFileIsCached(t *testing.T) {
	src := probetest.New().AddFile(repoName, "package.json", "{}")
	p := New(testLogger(), src, repoName)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		content, found, err := p.File(ctx, "package.json")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "{}", content)
	}
	_, found, err := p.File(ctx, "index.html")
	require.NoError(t, err)
	assert.False(t, found)
	_, _, _ = p.File(ctx, "index.html")

	assert.Equal(t, 1, src.Calls[repoName+":file:package.json"])
	assert.Equal(t, 1, src.Calls[repoName+":file:index.html"])
}

func TestTransientFailureReadsAsAbsent(t *testing.T) {
	src := probetest.New().AddFile(repoName, "package.json", "{}")
	src.Errs[repoName+":file:package.json"] = &githubapi.TransportError{StatusCode: 502}
	p := New(testLogger(), src, repoName)

	_, found, err := p.File(context.Background(), "package.json")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFatalFailurePropagates(t *testing.T) {
	src := probetest.New()
	src.Errs[repoName+":file:package.json"] = credential.ErrNoUsableCredentials
	p := New(testLogger(), src, repoName)

	_, _, err := p.File(context.Background(), "package.json")
	assert.ErrorIs(t, err, credential.ErrNoUsableCredentials)
}

func TestClientTimeoutReadsAsAbsent(t *testing.T) {
	src := probetest.New().AddFile(repoName, "package.json", "{}")
	src.Errs[repoName+":file:package.json"] = &githubapi.TransportError{Err: &url.Error{
		Op:  "Get",
		URL: "https://api.github.com/repos/acme/site/contents/package.json",
		Err: fmt.Errorf("%w (Client.Timeout exceeded while awaiting headers)", context.DeadlineExceeded),
	}}
	p := New(testLogger(), src, repoName)

	_, found, err := p.File(context.Background(), "package.json")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCancelledContextPropagates(t *testing.T) {
	src := probetest.New()
	src.Errs[repoName+":file:package.json"] = context.Canceled
	p := New(testLogger(), src, repoName)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.File(ctx, "package.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirListsChildren(t *testing.T) {
	src := probetest.New().
		AddFile(repoName, ".github/workflows/ci.yml", "on: push").
		AddFile(repoName, "src/index.js", "")
	p := New(testLogger(), src, repoName)

	entries, found, err := p.Dir(context.Background(), "")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, entries, 2)
	assert.Equal(t, ".github", entries[0].Name)
	assert.Equal(t, "dir", entries[0].Type)

	entries, found, err = p.Dir(context.Background(), ".github/workflows")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ".github/workflows/ci.yml", entries[0].Path)
}

func TestReadmeFallsBackToRootFile(t *testing.T) {
	src := probetest.New().
		AddFile(repoName, "src/app.js", "").
		AddFile(repoName, "README.rst", "Site\n====")
	p := New(testLogger(), src, repoName)

	content, found, err := p.Readme(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Site\n====", content)

	_, _, _ = p.Readme(context.Background())
	assert.Equal(t, 1, src.Calls[repoName+":readme"])
}

func TestReadmeAbsent(t *testing.T) {
	p := New(testLogger(), probetest.New(), repoName)

	_, found, err := p.Readme(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}
