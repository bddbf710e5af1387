package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolRequiresToken(t *testing.T) {
	_, err := NewPool(nil)
	assert.ErrorIs(t, err, ErrNoUsableCredentials)
}

func TestRotateIsCircular(t *testing.T) {
	p, err := NewPool([]string{"a", "b", "c"})
	require.NoError(t, err)

	idx, c := p.Rotate()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", c.Token)
	p.Rotate()
	idx, _ = p.Rotate()
	assert.Equal(t, 0, idx)
}

func TestRotateSingleCredentialIsNoop(t *testing.T) {
	p, err := NewPool([]string{"only"})
	require.NoError(t, err)

	idx, c := p.Rotate()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "only", c.Token)

	reset := time.Now().Add(time.Minute)
	p.RecordQuota(0, 3, reset)
	switched, wait := p.SelectWithHeadroom(100)
	assert.False(t, switched)
	assert.True(t, wait.Equal(reset))
}

func TestSelectWithHeadroomSwitchesToRichCredential(t *testing.T) {
	p, err := NewPool([]string{"low", "high"})
	require.NoError(t, err)

	p.RecordQuota(0, 50, time.Now().Add(time.Hour))
	p.RecordQuota(1, 5000, time.Now().Add(time.Hour))

	switched, _ := p.SelectWithHeadroom(100)
	require.True(t, switched)
	idx, c := p.Current()
	assert.Equal(t, 1, idx)
	assert.Equal(t, "high", c.Token)
}

func TestSelectWithHeadroomTreatsUnknownAsAvailable(t *testing.T) {
	p, err := NewPool([]string{"a", "b"})
	require.NoError(t, err)
	p.RecordQuota(0, 10, time.Now())

	switched, _ := p.SelectWithHeadroom(100)
	assert.True(t, switched)
}

func TestSelectWithHeadroomReturnsEarliestReset(t *testing.T) {
	p, err := NewPool([]string{"a", "b", "c"})
	require.NoError(t, err)
	now := time.Now()
	p.RecordQuota(0, 10, now.Add(30*time.Minute))
	p.RecordQuota(1, 20, now.Add(10*time.Minute))
	p.RecordQuota(2, 0, now.Add(20*time.Minute))

	switched, wait := p.SelectWithHeadroom(100)
	assert.False(t, switched)
	assert.True(t, wait.Equal(now.Add(10*time.Minute)))
	idx, _ := p.Current()
	assert.Equal(t, 0, idx)
}

func TestMarkInvalid(t *testing.T) {
	p, err := NewPool([]string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, p.MarkInvalid(0))
	idx, _ := p.Rotate()
	assert.Equal(t, 1, idx)
	idx, _ = p.Rotate()
	assert.Equal(t, 1, idx, "rotation skips invalid credentials")

	assert.ErrorIs(t, p.MarkInvalid(1), ErrNoUsableCredentials)
}

func TestSnapshotRedactsTokens(t *testing.T) {
	p, err := NewPool([]string{"ghp_secret1234"})
	require.NoError(t, err)
	snap := p.Snapshot()
	assert.Equal(t, "****1234", snap[0].Token)
	assert.Equal(t, UnknownQuota, snap[0].Remaining)
}
