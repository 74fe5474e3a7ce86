package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/models"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceP("tag", "t", nil, "Require a workshop tag (repeatable)")
	searchCmd.Flags().IntP("page", "p", 1, "Result page to fetch")
	searchCmd.Flags().Int("page-size", 0, "Results per page (overrides config)")
	viper.BindPFlag("search.tags", searchCmd.Flags().Lookup("tag"))
	viper.BindPFlag("search.page", searchCmd.Flags().Lookup("page"))
	viper.BindPFlag("search.page_size", searchCmd.Flags().Lookup("page-size"))
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search the Steam Workshop",
	Long: `Queries the Steam Workshop for Project Zomboid items matching the text,
optionally filtered by tags. Requires a Steam Web API key. Results are a
single page; use --page to paginate.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) {
	if globalConfig.ApiKey == "" {
		log.Error("A Steam Web API key is required for workshop search. Use --api-key or set ApiKey in the config.")
		os.Exit(1)
	}

	text := strings.Join(args, " ")
	tags := viper.GetStringSlice("search.tags")
	page := viper.GetInt("search.page")
	if size := viper.GetInt("search.page_size"); size > 0 {
		globalConfig.SearchPageSize = size
	}

	client := newAPIClient()
	result, err := client.QueryFiles(text, tags, page)
	if err != nil {
		log.WithError(err).Error("Workshop search failed")
		os.Exit(1)
	}

	if result.Total == 0 {
		fmt.Println("No workshop items matched.")
		return
	}
	if cache := openDetailsCache(); cache != nil {
		storeSearchResults(cache, result.Items)
	}
	fmt.Printf("Page %d: showing %d of %d results\n\n", page, len(result.Items), result.Total)
	for _, item := range result.Items {
		fmt.Printf("%s  %s\n", item.PublishedFileID, item.Title)
		if len(item.Tags) > 0 {
			names := make([]string, 0, len(item.Tags))
			for _, t := range item.Tags {
				if t.DisplayName != "" {
					names = append(names, t.DisplayName)
				} else {
					names = append(names, t.Tag)
				}
			}
			fmt.Printf("    tags: %s\n", strings.Join(names, ", "))
		}
		if item.Subscriptions > 0 {
			fmt.Printf("    subscribers: %d\n", item.Subscriptions)
		}
	}
	fmt.Printf("\nAdd one with: pz-mod-manager add <workshop-id>\n")
}

// storeSearchResults primes the details cache with search hits so a later
// refresh or add serves them locally.
func storeSearchResults(cache *database.DB, items []models.PublishedFileDetail) {
	for _, item := range items {
		if item.PublishedFileID == "" {
			continue
		}
		if err := cache.StoreDetail(item); err != nil {
			log.WithError(err).Debugf("Failed to cache search result %s", item.PublishedFileID)
		}
	}
}
