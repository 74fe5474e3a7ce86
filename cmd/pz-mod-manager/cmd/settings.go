package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/internal/ini"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings [key [value]]",
	Short: "List or edit server settings other than the mod list",
	Long: `Without arguments, lists every key=value setting in the server ini
(except the mod-list directives) with its inferred type and any Min/Max/
Default hints from the comments. With a key, shows that setting. With a key
and value, validates the value against the setting's type and writes it.`,
	Args: cobra.MaximumNArgs(2),
	Run:  runSettings,
}

func runSettings(cmd *cobra.Command, args []string) {
	path := requireIniPath()
	settings, err := ini.ReadAllSettings(path)
	if err != nil {
		log.WithError(err).Error("Failed to read server settings")
		os.Exit(1)
	}

	switch len(args) {
	case 0:
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tTYPE\tLIMITS")
		for _, s := range settings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Key, s.Value, s.Kind(), formatLimits(s))
		}
		w.Flush()

	case 1:
		s, ok := findSetting(settings, args[0])
		if !ok {
			log.Errorf("No setting %q in %s", args[0], path)
			os.Exit(1)
		}
		fmt.Printf("%s=%s (%s)\n", s.Key, s.Value, s.Kind())
		if s.Comment != "" {
			fmt.Println(s.Comment)
		}

	case 2:
		s, ok := findSetting(settings, args[0])
		if !ok {
			log.Errorf("No setting %q in %s", args[0], path)
			os.Exit(1)
		}
		value, err := s.Kind().Normalize(args[1])
		if err != nil {
			log.Errorf("Invalid value for %s: %v", s.Key, err)
			os.Exit(1)
		}
		if err := checkLimits(s, value); err != nil {
			log.Errorf("Value out of range for %s: %v", s.Key, err)
			os.Exit(1)
		}
		if err := ini.WriteSettings(path, map[string]string{s.Key: value}); err != nil {
			log.WithError(err).Error("Failed to write setting")
			os.Exit(1)
		}
		log.Infof("Set %s=%s", s.Key, value)
	}
}

func findSetting(settings []ini.Setting, key string) (ini.Setting, bool) {
	for _, s := range settings {
		if s.Key == key {
			return s, true
		}
	}
	return ini.Setting{}, false
}

func formatLimits(s ini.Setting) string {
	out := ""
	if s.Min != nil {
		out += fmt.Sprintf("min %g", *s.Min)
	}
	if s.Max != nil {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("max %g", *s.Max)
	}
	if s.Default != "" {
		if out != "" {
			out += ", "
		}
		out += "default " + s.Default
	}
	return out
}

func checkLimits(s ini.Setting, value string) error {
	if s.Min == nil && s.Max == nil {
		return nil
	}
	kind := s.Kind()
	if kind != ini.KindInt && kind != ini.KindFloat {
		return nil
	}
	var f float64
	if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
		return nil // not numeric after all, let the game complain
	}
	if s.Min != nil && f < *s.Min {
		return fmt.Errorf("%g is below the minimum %g", f, *s.Min)
	}
	if s.Max != nil && f > *s.Max {
		return fmt.Errorf("%g is above the maximum %g", f, *s.Max)
	}
	return nil
}
