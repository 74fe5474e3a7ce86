package modlist

import (
	"errors"

	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/models"

	log "github.com/sirupsen/logrus"
)

// CachedLookup wraps a remote Lookup with the local bitcask details cache.
// Known ids are served from the cache; only the misses hit the network, and
// fresh results are written back.
type CachedLookup struct {
	Remote Lookup
	Cache  *database.DB
}

func (c *CachedLookup) GetDetails(workshopIDs []string) ([]models.PublishedFileDetail, error) {
	if c.Cache == nil {
		return c.Remote.GetDetails(workshopIDs)
	}

	var details []models.PublishedFileDetail
	var missing []string
	for _, id := range workshopIDs {
		cached, err := c.Cache.GetCachedDetail(id)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.WithError(err).Warnf("Cache read failed for workshop id %s", id)
			}
			missing = append(missing, id)
			continue
		}
		details = append(details, cached)
	}
	if len(missing) == 0 {
		log.Debugf("All %d workshop details served from cache", len(details))
		return details, nil
	}

	fetched, err := c.Remote.GetDetails(missing)
	if err != nil {
		// Partial cache hits are still worth returning alongside the error
		// so the caller can decide; the manager skips enrichment entirely.
		return details, err
	}
	for _, d := range fetched {
		if err := c.Cache.StoreDetail(d); err != nil {
			log.WithError(err).Warnf("Failed to cache detail for workshop id %s", d.PublishedFileID)
		}
	}
	return append(details, fetched...), nil
}
