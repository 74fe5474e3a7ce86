package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/index"
	"pz-mod-manager/internal/workshop"
)

var scanIndexFlag bool

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanIndexFlag, "index", false, "Rebuild the local search index from the scan results")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the workshop content directory for installed mods",
	Long: `Walks the Steam workshop content directory, reads every mod.info it can
find (version-scoped descriptors win over stale root ones), and prints the
mod id / workshop id pairings. With --index the results are also written to
the local bleve search index queried by 'find'.`,
	Run: runScan,
}

func runScan(cmd *cobra.Command, args []string) {
	root := globalConfig.WorkshopPath
	if root == "" {
		log.Error("No workshop path configured. Use --workshop-path or set WorkshopPath in the config.")
		os.Exit(1)
	}

	results := workshop.Scan(root, globalConfig.AppID)
	if len(results) == 0 {
		log.Warnf("No mod.info files found under %s", root)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MOD ID\tWORKSHOP ID\tNAME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ModID, r.WorkshopID, r.Name)
	}
	w.Flush()
	fmt.Printf("\n%d mods across %d workshop items\n", len(results), len(workshop.BuildWorkshopMap(results)))

	if scanIndexFlag {
		indexScanResults(results)
	}
}

// indexScanResults rebuilds the bleve index from the scan, with a live
// progress line since large workshop directories take a while to index.
func indexScanResults(results []workshop.ModInfo) {
	bleveIndex, err := index.OpenOrCreateIndex(globalConfig.BleveIndexPath)
	if err != nil {
		log.WithError(err).Error("Failed to open search index")
		os.Exit(1)
	}
	defer func() {
		if err := bleveIndex.Close(); err != nil {
			log.WithError(err).Error("Error closing search index")
		}
	}()

	writer := uilive.New()
	writer.Start()
	defer writer.Stop()

	indexed := 0
	for _, r := range results {
		item := index.Item{
			ID:         r.ModID,
			WorkshopID: r.WorkshopID,
			Name:       r.Name,
			Enabled:    true,
		}
		if err := index.IndexItem(bleveIndex, item); err != nil {
			log.WithError(err).Warnf("Failed to index mod %s", r.ModID)
			continue
		}
		indexed++
		fmt.Fprintf(writer, "Indexing mods... %d/%d\n", indexed, len(results))
	}
	fmt.Fprintf(writer, "Indexed %d mods\n", indexed)
}
