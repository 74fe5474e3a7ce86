package modlist

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"pz-mod-manager/internal/ini"
	"pz-mod-manager/internal/models"
	"pz-mod-manager/internal/sidecar"
	"pz-mod-manager/internal/workshop"

	log "github.com/sirupsen/logrus"
)

// Lookup is the remote metadata contract the manager consumes. Failures are
// non-fatal: the manager logs them and continues without enrichment.
type Lookup interface {
	GetDetails(workshopIDs []string) ([]models.PublishedFileDetail, error)
}

// Manager orchestrates loading and saving the mod list: it merges the ini
// directives, the workshop scan index, and the sidecar of disabled mods into
// one collection, and persists edits back through the codec and sidecar.
type Manager struct {
	List *List

	Path     string      // managed server ini
	Opts     ini.Options // directive names and legacy prefix mode
	ScanRoot string      // workshop content root, "" disables scanning
	AppID    string
	Lookup   Lookup // optional, nil disables enrichment

	generation uint64
}

// LoadResult reports advisory conditions from a load.
type LoadResult struct {
	// Warning is set when the two directive lists had to be paired
	// positionally and their lengths disagree. Positional pairing is known
	// to be unreliable; a scan root fixes it.
	Warning string
	// ScanEntries is the number of scan index entries consulted.
	ScanEntries int
}

func NewManager(path string, opts ini.Options) *Manager {
	return &Manager{List: NewList(), Path: path, Opts: opts}
}

// Load reads the ini, resolves mod/workshop pairings, appends sidecar
// entries as disabled, and replaces the collection wholesale. I/O errors on
// the ini leave the current collection untouched.
func (m *Manager) Load() (LoadResult, error) {
	modIDs, workshopIDs, err := ini.Load(m.Path, m.Opts)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	var mods []models.Mod

	var scanned []workshop.ModInfo
	if m.ScanRoot != "" {
		scanned = workshop.Scan(m.ScanRoot, m.AppID)
	}
	result.ScanEntries = len(scanned)

	if len(scanned) > 0 {
		mods = resolveWithIndex(modIDs, workshopIDs, scanned)
	} else {
		if len(modIDs) > 0 && len(workshopIDs) > 0 && len(modIDs) != len(workshopIDs) {
			result.Warning = fmt.Sprintf(
				"the %s= list has %d entries but %s= has %d; these are independent lists and positional pairing may be wrong. Set a workshop path to auto-resolve",
				m.Opts.ModsKey, len(modIDs), m.Opts.WorkshopKey, len(workshopIDs))
			log.Warn(result.Warning)
		}
		mods = resolvePositional(modIDs, workshopIDs)
	}

	// Disabled mods live only in the sidecar; restore them at the end.
	mods = append(mods, sidecar.Load(m.Path)...)

	m.List.SetAll(mods)
	return result, nil
}

// resolveWithIndex pairs ids through the scan index. Every mod id yields one
// enabled entry whether or not a workshop id was found. Workshop ids the mod
// list did not consume are expanded through the reverse map (one workshop
// item can provide several mods); unknown ones become placeholder entries
// with an empty mod id so the user sees the unresolved dependency.
func resolveWithIndex(modIDs, workshopIDs []string, scanned []workshop.ModInfo) []models.Mod {
	modToWs := workshop.BuildModIDMap(scanned)
	wsToMods := workshop.BuildWorkshopMap(scanned)
	nameByMod := make(map[string]string, len(scanned))
	for _, s := range scanned {
		if _, ok := nameByMod[s.ModID]; !ok {
			nameByMod[s.ModID] = s.Name
		}
	}

	var mods []models.Mod
	for _, mid := range modIDs {
		wid := modToWs[mid]
		name := nameByMod[mid]
		if wid == "" {
			// The ini sometimes escapes characters like & as \&; retry
			// with all backslashes stripped.
			clean := strings.ReplaceAll(mid, `\`, "")
			wid = modToWs[clean]
			if name == "" {
				name = nameByMod[clean]
			}
		}
		mods = append(mods, models.Mod{ModID: mid, WorkshopID: wid, Name: name, Enabled: true})
	}

	used := make(map[string]bool, len(mods))
	for _, m := range mods {
		if m.WorkshopID != "" {
			used[m.WorkshopID] = true
		}
	}
	for _, wid := range workshopIDs {
		if wid == "" || used[wid] {
			continue
		}
		if known := wsToMods[wid]; len(known) > 0 {
			for _, mid := range known {
				mods = append(mods, models.Mod{ModID: mid, WorkshopID: wid, Name: nameByMod[mid], Enabled: true})
			}
		} else {
			// Dependency-only workshop item: keep it visible instead of
			// dropping it.
			mods = append(mods, models.Mod{ModID: "", WorkshopID: wid, Enabled: true})
		}
	}
	return mods
}

// resolvePositional zips the two lists by index, padding the shorter side
// with empty strings.
func resolvePositional(modIDs, workshopIDs []string) []models.Mod {
	maxLen := len(modIDs)
	if len(workshopIDs) > maxLen {
		maxLen = len(workshopIDs)
	}
	var mods []models.Mod
	for i := 0; i < maxLen; i++ {
		var mid, wid string
		if i < len(modIDs) {
			mid = modIDs[i]
		}
		if i < len(workshopIDs) {
			wid = workshopIDs[i]
		}
		mods = append(mods, models.Mod{ModID: mid, WorkshopID: wid, Enabled: true})
	}
	return mods
}

// Save persists the collection to path: enabled mods go into the two
// directives (workshop ids deduplicated, first-seen order), disabled mods go
// to the sidecar. A missing destination is initialized with an empty
// skeleton first so "save as" produces a parseable file.
func (m *Manager) Save(path string) error {
	if path == "" {
		path = m.Path
	}

	enabled := m.List.Enabled()
	var modIDs []string
	for _, mod := range enabled {
		if mod.ModID != "" {
			modIDs = append(modIDs, mod.ModID)
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

	if _, err := os.Stat(path); os.IsNotExist(err) {
		skeleton := []string{m.Opts.ModsKey + "=\n", m.Opts.WorkshopKey + "=\n"}
		if err := ini.WriteFile(path, skeleton); err != nil {
			return err
		}
	}
	if err := ini.Save(path, modIDs, workshopIDs, m.Opts); err != nil {
		return err
	}

	if err := sidecar.Save(path, m.List.Disabled()); err != nil {
		return err
	}
	m.Path = path
	return nil
}

// Enrichment is one delivery of remote details, tagged with the generation
// current at dispatch time.
type Enrichment struct {
	Generation uint64
	Details    []models.PublishedFileDetail
	Err        error
}

// StartEnrichment dispatches a background fetch of details for every
// distinct workshop id in the collection. It never blocks: the result
// arrives on the returned channel and must be handed to ApplyEnrichment.
// Returns nil when no lookup is configured or there is nothing to fetch.
func (m *Manager) StartEnrichment() <-chan Enrichment {
	if m.Lookup == nil {
		return nil
	}
	ids := m.List.DistinctWorkshopIDs()
	if len(ids) == 0 {
		return nil
	}

	gen := atomic.AddUint64(&m.generation, 1)
	ch := make(chan Enrichment, 1)
	go func() {
		details, err := m.Lookup.GetDetails(ids)
		ch <- Enrichment{Generation: gen, Details: details, Err: err}
		close(ch)
	}()
	return ch
}

// ApplyEnrichment applies a delivery to the collection, matching by workshop
// id. A delivery whose generation is no longer current is discarded: an
// in-flight slow response must not overwrite a newer one. Returns how many
// entries were updated and whether the delivery was stale.
func (m *Manager) ApplyEnrichment(e Enrichment) (updated int, stale bool) {
	if e.Generation != atomic.LoadUint64(&m.generation) {
		log.Debugf("Discarding stale enrichment delivery (generation %d)", e.Generation)
		return 0, true
	}
	if e.Err != nil {
		log.WithError(e.Err).Warn("Workshop lookup failed, skipping enrichment")
		return 0, false
	}
	for _, d := range e.Details {
		updated += m.List.ApplyDetail(d.PublishedFileID, d.Title, d.FileDescription)
	}
	return updated, false
}
