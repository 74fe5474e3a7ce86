package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// fallbackTags are the known Project Zomboid workshop tags, used when the
// tag vocabulary endpoint is unavailable.
var fallbackTags = []string{
	"Build 42",
	"Build 41",
	"Map",
	"Clothing",
	"Weapons",
	"Items",
	"NPC",
	"Trait",
	"Occupation",
	"Vehicles",
	"Building",
	"Characters",
	"Skills",
	"Sounds",
	"Translations",
	"UI",
	"Utility",
	"Mechanics",
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List workshop tags usable with 'search --tag'",
	Run:   runTags,
}

func runTags(cmd *cobra.Command, args []string) {
	if globalConfig.ApiKey == "" {
		log.Error("A Steam Web API key is required. Use --api-key or set ApiKey in the config.")
		os.Exit(1)
	}

	client := newAPIClient()
	tags, err := client.GetTagList()
	if err != nil || len(tags) == 0 {
		if err != nil {
			log.WithError(err).Warn("Tag vocabulary fetch failed, showing known tags")
		}
		for _, t := range fallbackTags {
			fmt.Println(t)
		}
		return
	}
	for _, t := range tags {
		if t.DisplayName != "" {
			fmt.Println(t.DisplayName)
		} else {
			fmt.Println(t.Tag)
		}
	}
}
