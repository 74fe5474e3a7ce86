package workshop

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultAppID is the Project Zomboid Steam app id.
const DefaultAppID = "108600"

// ModInfo is a single mod found inside a workshop item's directory.
type ModInfo struct {
	ModID      string
	Name       string
	WorkshopID string
}

// Scan walks a Steam workshop content directory and collects every mod.info
// it can resolve. The root may be the app content directory itself
// (content/<appID>), the content/ directory above it, or the workshop root
// containing content/<appID>. An unresolvable root yields an empty result,
// not an error: a missing download directory is an expected state.
func Scan(root string, appID string) []ModInfo {
	if appID == "" {
		appID = DefaultAppID
	}
	contentDir := resolveContentDir(root, appID)
	if contentDir == "" {
		return nil
	}

	var results []ModInfo
	itemDirs, err := os.ReadDir(contentDir)
	if err != nil {
		log.WithError(err).Warnf("Cannot read workshop content directory %s", contentDir)
		return nil
	}

	for _, item := range itemDirs {
		if !item.IsDir() || !isNumeric(item.Name()) {
			continue
		}
		workshopID := item.Name()
		modsDir := filepath.Join(contentDir, workshopID, "mods")
		modDirs, err := os.ReadDir(modsDir)
		if err != nil {
			continue // item without a mods/ directory, e.g. a map pack
		}
		for _, modDir := range modDirs {
			if !modDir.IsDir() {
				continue
			}
			modID, name, ok := findBestModInfo(filepath.Join(modsDir, modDir.Name()))
			if !ok {
				continue
			}
			results = append(results, ModInfo{
				ModID:      modID,
				Name:       name,
				WorkshopID: workshopID,
			})
		}
	}
	return results
}

// BuildModIDMap maps mod id to workshop id. Collisions resolve to the last
// entry in scan order.
func BuildModIDMap(mods []ModInfo) map[string]string {
	m := make(map[string]string, len(mods))
	for _, mod := range mods {
		m[mod.ModID] = mod.WorkshopID
	}
	return m
}

// BuildWorkshopMap maps workshop id to the mod ids that item provides, in
// discovery order.
func BuildWorkshopMap(mods []ModInfo) map[string][]string {
	m := make(map[string][]string)
	for _, mod := range mods {
		m[mod.WorkshopID] = append(m[mod.WorkshopID], mod.ModID)
	}
	return m
}

// resolveContentDir probes the three accepted root shapes in order and
// returns the app content directory, or "" if none exists.
func resolveContentDir(root, appID string) string {
	if filepath.Base(root) == appID && isDir(root) {
		return root
	}
	if candidate := filepath.Join(root, appID); isDir(candidate) {
		return candidate
	}
	if candidate := filepath.Join(root, "content", appID); isDir(candidate) {
		return candidate
	}
	return ""
}

// findBestModInfo locates and parses the mod.info for one mod directory.
// Workshop items can carry version subdirectories (42/, 42.13/, ...) with
// their own mod.info describing the currently shipped build; the first
// version directory encountered in the listing wins over a stale root-level
// file. Root mod.info is the fallback when no versioned one exists.
func findBestModInfo(modDir string) (modID, name string, ok bool) {
	best := ""
	entries, err := os.ReadDir(modDir)
	if err != nil {
		return "", "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(modDir, entry.Name(), "mod.info")
		if isFile(candidate) {
			best = candidate
			break
		}
	}
	if best == "" {
		root := filepath.Join(modDir, "mod.info")
		if !isFile(root) {
			return "", "", false
		}
		best = root
	}
	return parseModInfo(best)
}

// parseModInfo extracts id= and name= from a descriptor. First occurrence of
// each wins. A descriptor without id= contributes nothing; corrupt or
// partial installs are expected and skipped silently.
func parseModInfo(path string) (modID, name string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Debugf("Skipping unreadable mod.info at %s", path)
		return "", "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if v, found := strings.CutPrefix(line, "id="); found && modID == "" {
			modID = strings.TrimSpace(v)
		} else if v, found := strings.CutPrefix(line, "name="); found && name == "" {
			name = strings.TrimSpace(v)
		}
	}
	if modID == "" {
		return "", "", false
	}
	return modID, name, true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
