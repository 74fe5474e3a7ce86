package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/models"
	"pz-mod-manager/internal/modlist"
)

var refreshForceFlag bool

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().BoolVar(&refreshForceFlag, "force", false, "Refetch even when details are already cached")
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch workshop names for the whole mod list and prime the cache",
	Long: `Batch-fetches Steam Workshop details for every distinct workshop id in
the list, stores them in the local details cache, and shows the resolved
names. Disabled mods keep their refreshed name in the sidecar on the next
save.`,
	Run: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) {
	if globalConfig.ApiKey == "" {
		log.Error("A Steam Web API key is required. Use --api-key or set ApiKey in the config.")
		os.Exit(1)
	}

	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	ids := m.List.DistinctWorkshopIDs()
	if len(ids) == 0 {
		fmt.Println("No workshop ids to look up.")
		return
	}

	client := newAPIClient()
	cache := openDetailsCache()

	writer := uilive.New()
	writer.Start()
	details := fetchAllDetails(client, cache, ids, globalConfig.SearchPageSize, refreshForceFlag, writer)
	writer.Stop()

	updated := 0
	for _, d := range details {
		updated += m.List.ApplyDetail(d.PublishedFileID, d.Title, d.FileDescription)
	}
	for _, mod := range m.List.All() {
		if mod.WorkshopID != "" && mod.Name == "" {
			log.Warnf("Workshop item %s is unknown to Steam (removed or private?)", mod.WorkshopID)
		}
	}
	fmt.Printf("Updated names on %d entries\n", updated)

	// Persist so refreshed names survive in the sidecar for disabled mods.
	if err := m.Save(""); err != nil {
		log.WithError(err).Error("Failed to save mod list")
		os.Exit(1)
	}
}

// fetchAllDetails resolves details for ids in page-size batches so a long
// list shows progress. Cache hits are served locally unless force is set,
// fresh results are stored back, and a failed batch is skipped so the
// remaining batches still resolve.
func fetchAllDetails(lookup modlist.Lookup, cache *database.DB, ids []string, batchSize int, force bool, progress io.Writer) []models.PublishedFileDetail {
	if batchSize <= 0 {
		batchSize = 25
	}
	var details []models.PublishedFileDetail
	skipped := 0
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		if cache != nil && !force {
			batch = filterUncached(cache, batch, &details)
			if len(batch) == 0 {
				fmt.Fprintf(progress, "Resolving workshop details... %d/%d (cached)\n", end, len(ids))
				continue
			}
		}

		got, err := lookup.GetDetails(batch)
		if err != nil {
			skipped += len(batch)
			log.WithError(err).Warnf("Detail fetch failed for a batch of %d ids, skipping", len(batch))
			continue
		}
		if cache != nil {
			for _, d := range got {
				if err := cache.StoreDetail(d); err != nil {
					log.WithError(err).Warnf("Failed to cache detail for %s", d.PublishedFileID)
				}
			}
		}
		details = append(details, got...)
		fmt.Fprintf(progress, "Resolving workshop details... %d/%d\n", end, len(ids))
	}
	fmt.Fprintf(progress, "Resolved %d of %d workshop items\n", len(details), len(ids))
	if skipped > 0 {
		log.Warnf("%d workshop ids skipped because their batch failed", skipped)
	}
	return details
}

// filterUncached splits a batch into cache hits (appended to details) and
// misses (returned for fetching).
func filterUncached(cache *database.DB, ids []string, details *[]models.PublishedFileDetail) []string {
	var missing []string
	for _, id := range ids {
		if d, err := cache.GetCachedDetail(id); err == nil {
			*details = append(*details, d)
		} else {
			missing = append(missing, id)
		}
	}
	return missing
}
