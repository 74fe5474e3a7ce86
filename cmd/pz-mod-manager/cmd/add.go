package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/internal/helpers"
	"pz-mod-manager/internal/models"
	"pz-mod-manager/internal/modlist"
	"pz-mod-manager/internal/workshop"
)

var addModIDFlag string

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addModIDFlag, "mod-id", "", "Explicit mod id for the workshop item (skips scan resolution)")
}

var addCmd = &cobra.Command{
	Use:   "add <workshop-id|workshop-url|mod-id>",
	Short: "Add a mod to the list and save",
	Long: `Accepts a numeric workshop id, a steamcommunity.com workshop URL, or a
bare mod id. Workshop items are resolved to their mod ids through the local
workshop scan when possible, and named via the Steam API when a key is
configured.`,
	Args: cobra.ExactArgs(1),
	Run:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) {
	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	if workshopID := helpers.ExtractWorkshopID(args[0]); workshopID != "" {
		added := addWorkshopItem(m, workshopID)
		log.Infof("Added %d entries for workshop item %s", added, workshopID)
	} else {
		// Not a workshop reference; treat the argument as a bare mod id.
		m.List.Add(models.Mod{ModID: args[0], Enabled: true})
		log.Infof("Added mod id %q with no workshop item", args[0])
	}

	if ch := m.StartEnrichment(); ch != nil {
		m.ApplyEnrichment(<-ch)
	}
	if err := m.Save(""); err != nil {
		log.WithError(err).Error("Failed to save mod list")
		os.Exit(1)
	}
	log.Infof("Saved %s", m.Path)
}

// addWorkshopItem appends one entry per mod the workshop item provides
// according to the local scan, or a single entry when the item is unknown
// locally. Returns the number of entries added.
func addWorkshopItem(m *modlist.Manager, workshopID string) int {
	if addModIDFlag != "" {
		m.List.Add(models.Mod{ModID: addModIDFlag, WorkshopID: workshopID, Enabled: true})
		return 1
	}

	if m.ScanRoot != "" {
		wsToMods := workshop.BuildWorkshopMap(workshop.Scan(m.ScanRoot, m.AppID))
		if known := wsToMods[workshopID]; len(known) > 0 {
			for _, modID := range known {
				m.List.Add(models.Mod{ModID: modID, WorkshopID: workshopID, Enabled: true})
			}
			return len(known)
		}
	}

	// Unknown locally: add as an unresolved entry the user can fill in
	// after the item downloads.
	m.List.Add(models.Mod{WorkshopID: workshopID, Enabled: true})
	return 1
}
