package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/internal/helpers"
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Bool("mods", false, "Print only the escaped mod id list")
	exportCmd.Flags().Bool("workshop", false, "Print only the workshop id list")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print enabled mods as Docker-ready env var values",
	Long: `Formats the enabled mod list for Docker server images: mod ids get the
double-backslash prefix (so the container receives a single one) with
special characters escaped, and workshop ids are deduplicated.`,
	Run: runExport,
}

func runExport(cmd *cobra.Command, args []string) {
	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	enabled := m.List.Enabled()
	var modIDs []string
	for _, mod := range enabled {
		if mod.ModID != "" {
			modIDs = append(modIDs, helpers.EscapeDockerModID(mod.ModID))
		}
	}
	seen := make(map[string]bool)
	var workshopIDs []string
	for _, mod := range enabled {
		if mod.WorkshopID != "" && !seen[mod.WorkshopID] {
			seen[mod.WorkshopID] = true
			workshopIDs = append(workshopIDs, mod.WorkshopID)
		}
	}

	onlyMods, _ := cmd.Flags().GetBool("mods")
	onlyWorkshop, _ := cmd.Flags().GetBool("workshop")
	switch {
	case onlyMods:
		fmt.Println(strings.Join(modIDs, ";"))
	case onlyWorkshop:
		fmt.Println(strings.Join(workshopIDs, ";"))
	default:
		fmt.Printf("MOD_IDS=%s\n", strings.Join(modIDs, ";"))
		fmt.Printf("WORKSHOP_IDS=%s\n", strings.Join(workshopIDs, ";"))
	}
}
