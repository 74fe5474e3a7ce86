package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <mod-id>...",
	Short: "Remove mods from the list entirely and save",
	Args:  cobra.MinimumNArgs(1),
	Run:   runRemove,
}

func runRemove(cmd *cobra.Command, args []string) {
	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	total := 0
	for _, modID := range args {
		n := m.List.RemoveByModID(modID)
		if n == 0 {
			log.Warnf("No mod with id %q in the list", modID)
		}
		total += n
	}
	if total == 0 {
		log.Info("Nothing removed.")
		return
	}

	if err := m.Save(""); err != nil {
		log.WithError(err).Error("Failed to save mod list")
		os.Exit(1)
	}
	log.Infof("Removed %d entries, saved %s", total, m.Path)
}
