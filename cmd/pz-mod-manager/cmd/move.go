package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(moveCmd)
}

var moveCmd = &cobra.Command{
	Use:   "move <mod-id> up|down",
	Short: "Move a mod one position in the load order and save",
	Long: `The game loads mods in the order they appear in the Mods= line, so
ordering matters when mods override each other. Moves the first entry with
the given mod id one position up or down.`,
	Args: cobra.ExactArgs(2),
	Run:  runMove,
}

func runMove(cmd *cobra.Command, args []string) {
	modID, direction := args[0], args[1]
	if direction != "up" && direction != "down" {
		log.Errorf("Direction must be 'up' or 'down', got %q", direction)
		os.Exit(1)
	}

	m := newManager()
	if _, err := m.Load(); err != nil {
		log.WithError(err).Error("Failed to load mod list")
		os.Exit(1)
	}

	var moved bool
	if direction == "up" {
		moved = m.List.MoveUp(modID)
	} else {
		moved = m.List.MoveDown(modID)
	}
	if !moved {
		log.Warnf("Mod %q not moved (not in the list, or already at the edge)", modID)
		return
	}

	if err := m.Save(""); err != nil {
		log.WithError(err).Error("Failed to save mod list")
		os.Exit(1)
	}
	log.Infof("Moved %s %s, saved %s", modID, direction, m.Path)
}
