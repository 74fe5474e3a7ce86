package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var noFetchFlag bool

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&noFetchFlag, "no-fetch", false, "Skip fetching mod names from the Steam API")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the server's mod list with resolved workshop pairings",
	Long: `Loads the server ini, pairs mod ids with workshop items via the local
workshop scan (when a workshop path is configured), restores disabled mods
from the sidecar, and prints the result. With an API key configured, mod
names are fetched from the Steam Workshop unless --no-fetch is given.`,
	Run: runList,
}

func runList(cmd *cobra.Command, args []string) {
	m := newManager()
	result, err := m.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}
	if result.ScanEntries > 0 {
		log.Debugf("Workshop scan contributed %d entries", result.ScanEntries)
	}

	if !noFetchFlag {
		if ch := m.StartEnrichment(); ch != nil {
			updated, _ := m.ApplyEnrichment(<-ch)
			log.Debugf("Enrichment updated %d entries", updated)
		}
	}

	mods := m.List.All()
	if len(mods) == 0 {
		fmt.Println("No mods configured.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tMOD ID\tWORKSHOP ID\tNAME")
	for _, mod := range mods {
		state := "[x]"
		if !mod.Enabled {
			state = "[ ]"
		}
		modID := mod.ModID
		if modID == "" {
			modID = "(unresolved)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", state, modID, mod.WorkshopID, mod.Name)
	}
	w.Flush()

	if result.Warning != "" {
		fmt.Fprintf(os.Stderr, "\nwarning: %s\n", result.Warning)
	}
}
