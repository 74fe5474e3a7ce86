package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)

	enableCmd.Flags().Bool("all", false, "Enable every mod in the list")
	disableCmd.Flags().Bool("all", false, "Disable every mod in the list")
}

var enableCmd = &cobra.Command{
	Use:   "enable <mod-id>...",
	Short: "Enable mods and save the list",
	Run: func(cmd *cobra.Command, args []string) {
		runToggle(cmd, args, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <mod-id>...",
	Short: "Disable mods, moving them to the sidecar on save",
	Long: `Disabled mods are removed from the ini's Mods= and WorkshopItems= lines
but remembered in a sidecar file next to the ini, so re-enabling them later
restores the full entry.`,
	Run: func(cmd *cobra.Command, args []string) {
		runToggle(cmd, args, false)
	},
}

func runToggle(cmd *cobra.Command, args []string, enabled bool) {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		log.Error("Provide at least one mod id, or --all.")
		os.Exit(1)
	}

	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	if all {
		m.List.SetAllEnabled(enabled)
	} else {
		for _, modID := range args {
			if n := m.List.SetEnabled(modID, enabled); n == 0 {
				log.Warnf("No mod with id %q in the list", modID)
			} else if n > 1 {
				log.Infof("Mod id %q matched %d entries", modID, n)
			}
		}
	}

	if err := m.Save(""); err != nil {
		log.WithError(err).Error("Failed to save mod list")
		os.Exit(1)
	}
	log.Infof("Saved %s", m.Path)
}
