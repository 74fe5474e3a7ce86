package modlist

import (
	"sync"

	"pz-mod-manager/internal/models"
)

// List is the in-memory mod collection. It has a single logical owner (the
// command flow) but background enrichment applies name updates from another
// goroutine, so every access goes through the mutex. Duplicate mod ids are
// tolerated; they are surfaced to the user rather than silently collapsed.
type List struct {
	mu   sync.Mutex
	mods []models.Mod
}

func NewList() *List {
	return &List{}
}

// SetAll replaces the whole collection. Loads are wholesale replacements,
// never incremental merges.
func (l *List) SetAll(mods []models.Mod) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mods = append([]models.Mod(nil), mods...)
}

// All returns a copy of the collection in order.
func (l *List) All() []models.Mod {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Mod(nil), l.mods...)
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.mods)
}

// Add appends a mod to the end of the list.
func (l *List) Add(mod models.Mod) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mods = append(l.mods, mod)
}

// RemoveByModID removes every entry with the given mod id and returns how
// many were removed.
func (l *List) RemoveByModID(modID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.mods[:0]
	removed := 0
	for _, m := range l.mods {
		if m.ModID == modID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	l.mods = kept
	return removed
}

// SetEnabled toggles every entry with the given mod id and returns how many
// matched.
func (l *List) SetEnabled(modID string, enabled bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	changed := 0
	for i := range l.mods {
		if l.mods[i].ModID == modID {
			l.mods[i].Enabled = enabled
			changed++
		}
	}
	return changed
}

// SetAllEnabled enables or disables every entry.
func (l *List) SetAllEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.mods {
		l.mods[i].Enabled = enabled
	}
}

// MoveUp swaps the first entry with the given mod id one position towards
// the front. Load order matters to the game, so ordering is user-controlled.
func (l *List) MoveUp(modID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.mods {
		if l.mods[i].ModID == modID {
			if i == 0 {
				return false
			}
			l.mods[i], l.mods[i-1] = l.mods[i-1], l.mods[i]
			return true
		}
	}
	return false
}

// MoveDown swaps the first entry with the given mod id one position towards
// the back.
func (l *List) MoveDown(modID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.mods {
		if l.mods[i].ModID == modID {
			if i == len(l.mods)-1 {
				return false
			}
			l.mods[i], l.mods[i+1] = l.mods[i+1], l.mods[i]
			return true
		}
	}
	return false
}

// Enabled returns the enabled subset in order.
func (l *List) Enabled() []models.Mod {
	l.mu.Lock()
	defer l.mu.Unlock()
	var enabled []models.Mod
	for _, m := range l.mods {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}

// Disabled returns the disabled subset in order.
func (l *List) Disabled() []models.Mod {
	l.mu.Lock()
	defer l.mu.Unlock()
	var disabled []models.Mod
	for _, m := range l.mods {
		if !m.Enabled {
			disabled = append(disabled, m)
		}
	}
	return disabled
}

// ApplyDetail updates name and description on every entry sharing the
// workshop id and returns how many matched. Matching by workshop id, never
// by position, keeps a late enrichment delivery from corrupting entries the
// user has reordered or edited in the meantime.
func (l *List) ApplyDetail(workshopID, name, description string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	updated := 0
	for i := range l.mods {
		if l.mods[i].WorkshopID == workshopID {
			if name != "" {
				l.mods[i].Name = name
			}
			if description != "" {
				l.mods[i].Description = description
			}
			updated++
		}
	}
	return updated
}

// DistinctWorkshopIDs returns the distinct non-empty workshop ids in
// first-seen order.
func (l *List) DistinctWorkshopIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, m := range l.mods {
		if m.WorkshopID != "" && !seen[m.WorkshopID] {
			seen[m.WorkshopID] = true
			ids = append(ids, m.WorkshopID)
		}
	}
	return ids
}
