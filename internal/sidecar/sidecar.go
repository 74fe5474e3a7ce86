package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pz-mod-manager/internal/models"

	log "github.com/sirupsen/logrus"
)

// Filename is the hidden sidecar written next to the managed ini. It holds
// the mods the user has disabled, which the ini format itself cannot express.
const Filename = ".pz_mod_manager.json"

type document struct {
	DisabledMods []entry `json:"disabled_mods"`
}

type entry struct {
	ModID      string `json:"mod_id"`
	WorkshopID string `json:"workshop_id"`
	Name       string `json:"name"`
}

// Path returns the sidecar location for a given ini path.
func Path(iniPath string) string {
	return filepath.Join(filepath.Dir(iniPath), Filename)
}

// Load returns the disabled mods recorded next to iniPath. The sidecar is a
// memory aid, not a source of truth: a missing, unreadable, or malformed
// file degrades to an empty list.
func Load(iniPath string) []models.Mod {
	data, err := os.ReadFile(Path(iniPath))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("Cannot read sidecar %s, ignoring", Path(iniPath))
		}
		return nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.WithError(err).Warnf("Malformed sidecar %s, ignoring", Path(iniPath))
		return nil
	}
	mods := make([]models.Mod, 0, len(doc.DisabledMods))
	for _, e := range doc.DisabledMods {
		mods = append(mods, models.Mod{
			ModID:      e.ModID,
			WorkshopID: e.WorkshopID,
			Name:       e.Name,
			Enabled:    false,
		})
	}
	return mods
}

// Save writes the disabled mods next to iniPath. An empty set deletes any
// existing sidecar instead of leaving an empty file behind.
func Save(iniPath string, disabled []models.Mod) error {
	path := Path(iniPath)
	if len(disabled) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing stale sidecar %s: %w", path, err)
		}
		return nil
	}

	doc := document{DisabledMods: make([]entry, 0, len(disabled))}
	for _, m := range disabled {
		doc.DisabledMods = append(doc.DisabledMods, entry{
			ModID:      m.ModID,
			WorkshopID: m.WorkshopID,
			Name:       m.Name,
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing sidecar %s: %w", path, err)
	}
	return nil
}
