package modlist

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/models"
)

// countingLookup records which ids each call asked for.
type countingLookup struct {
	calls   [][]string
	details map[string]models.PublishedFileDetail
	err     error
}

func (c *countingLookup) GetDetails(ids []string) ([]models.PublishedFileDetail, error) {
	c.calls = append(c.calls, append([]string(nil), ids...))
	if c.err != nil {
		return nil, c.err
	}
	var out []models.PublishedFileDetail
	for _, id := range ids {
		if d, ok := c.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func openTestCache(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCachedLookupOnlyFetchesMisses(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.StoreDetail(models.PublishedFileDetail{
		PublishedFileID: "1", Title: "Cached",
	}))

	remote := &countingLookup{details: map[string]models.PublishedFileDetail{
		"2": {PublishedFileID: "2", Title: "Fetched"},
	}}
	lookup := &CachedLookup{Remote: remote, Cache: cache}

	details, err := lookup.GetDetails([]string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Cached", details[0].Title)
	assert.Equal(t, "Fetched", details[1].Title)

	require.Len(t, remote.calls, 1)
	assert.Equal(t, []string{"2"}, remote.calls[0])

	// The fetched detail is now cached; a second call stays local.
	_, err = lookup.GetDetails([]string{"1", "2"})
	require.NoError(t, err)
	assert.Len(t, remote.calls, 1)
}

func TestCachedLookupFullCacheHit(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.StoreDetail(models.PublishedFileDetail{PublishedFileID: "1"}))

	remote := &countingLookup{}
	lookup := &CachedLookup{Remote: remote, Cache: cache}

	details, err := lookup.GetDetails([]string{"1"})
	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Empty(t, remote.calls)
}

func TestCachedLookupRemoteErrorKeepsHits(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.StoreDetail(models.PublishedFileDetail{
		PublishedFileID: "1", Title: "Cached",
	}))

	remote := &countingLookup{err: errors.New("api down")}
	lookup := &CachedLookup{Remote: remote, Cache: cache}

	details, err := lookup.GetDetails([]string{"1", "2"})
	assert.Error(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Cached", details[0].Title)
}

func TestCachedLookupNilCachePassesThrough(t *testing.T) {
	remote := &countingLookup{details: map[string]models.PublishedFileDetail{
		"1": {PublishedFileID: "1"},
	}}
	lookup := &CachedLookup{Remote: remote}

	details, err := lookup.GetDetails([]string{"1"})
	require.NoError(t, err)
	assert.Len(t, details, 1)
	assert.Equal(t, []string{"1"}, remote.calls[0])
}
