package cmd

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/index"
)

func init() {
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search the local mod index built by 'scan --index'",
	Long: `Runs a bleve query-string search over the locally indexed mods. Field
queries work against the indexed field names, e.g.:

  pz-mod-manager find hydrocraft
  pz-mod-manager find '+workshopId:2875848298'`,
	Args: cobra.MinimumNArgs(1),
	Run:  runFind,
}

func runFind(cmd *cobra.Command, args []string) {
	query := strings.Join(args, " ")
	indexPath := globalConfig.BleveIndexPath
	if indexPath == "" {
		indexPath = "pzmods.bleve"
	}

	// Open, not OpenOrCreate: searching must not create an empty index.
	bleveIndex, err := bleve.Open(indexPath)
	if err != nil {
		if err == bleve.ErrorIndexPathDoesNotExist {
			log.Errorf("Search index not found at %s. Run 'scan --index' first.", indexPath)
		} else {
			log.Errorf("Failed to open search index at %s: %v", indexPath, err)
		}
		return
	}
	defer func() {
		if err := bleveIndex.Close(); err != nil {
			log.Errorf("Error closing search index: %v", err)
		}
	}()

	searchResults, err := index.SearchIndex(bleveIndex, query)
	if err != nil {
		log.Errorf("Error performing search: %v", err)
		return
	}

	if searchResults.Total == 0 {
		fmt.Println("No results found matching your query.")
		return
	}
	for i, hit := range searchResults.Hits {
		fmt.Printf("[%d] %s (Score: %.2f)\n", i+1, hit.ID, hit.Score)
		for field, value := range hit.Fields {
			if field == "id" {
				continue
			}
			fmt.Printf("  %s: %v\n", field, value)
		}
	}
	fmt.Printf("\n%d of %d results, took %s\n", len(searchResults.Hits), searchResults.Total, searchResults.Took)
}
