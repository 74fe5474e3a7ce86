package cmd

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/models"
)

// batchLookup records the batches it was asked for and fails any batch
// containing failOn.
type batchLookup struct {
	calls  [][]string
	failOn string
}

func (b *batchLookup) GetDetails(ids []string) ([]models.PublishedFileDetail, error) {
	b.calls = append(b.calls, append([]string(nil), ids...))
	var out []models.PublishedFileDetail
	for _, id := range ids {
		if id == b.failOn {
			return nil, errors.New("server error")
		}
		out = append(out, models.PublishedFileDetail{PublishedFileID: id, Title: "Mod " + id})
	}
	return out, nil
}

func newRefreshCache(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFetchAllDetailsFailedBatchSkipped(t *testing.T) {
	lookup := &batchLookup{failOn: "3"}
	details := fetchAllDetails(lookup, nil, []string{"1", "2", "3", "4", "5", "6"}, 2, false, io.Discard)

	var got []string
	for _, d := range details {
		got = append(got, d.PublishedFileID)
	}
	// The batch containing id 3 fails; the batches before and after it
	// still resolve.
	assert.Equal(t, []string{"1", "2", "5", "6"}, got)
	assert.Len(t, lookup.calls, 3)
}

func TestFetchAllDetailsServesAndPrimesCache(t *testing.T) {
	cache := newRefreshCache(t)
	lookup := &batchLookup{}

	details := fetchAllDetails(lookup, cache, []string{"1", "2"}, 25, false, io.Discard)
	require.Len(t, details, 2)
	require.Len(t, lookup.calls, 1)

	// The first run stored its results; the second is served entirely from
	// the cache.
	details = fetchAllDetails(lookup, cache, []string{"1", "2"}, 25, false, io.Discard)
	require.Len(t, details, 2)
	assert.Len(t, lookup.calls, 1)
	assert.Equal(t, "Mod 1", details[0].Title)
}

func TestFetchAllDetailsForceBypassesCache(t *testing.T) {
	cache := newRefreshCache(t)
	require.NoError(t, cache.StoreDetail(models.PublishedFileDetail{PublishedFileID: "1", Title: "Stale"}))

	lookup := &batchLookup{}
	details := fetchAllDetails(lookup, cache, []string{"1"}, 25, true, io.Discard)
	require.Len(t, details, 1)
	assert.Equal(t, "Mod 1", details[0].Title)
	assert.Len(t, lookup.calls, 1)

	// The refetched detail replaced the stale cached one.
	got, err := cache.GetCachedDetail("1")
	require.NoError(t, err)
	assert.Equal(t, "Mod 1", got.Title)
}
