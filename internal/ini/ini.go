package ini

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how the two mod-list directives are recognized and
// formatted. The zero value is completed by withDefaults.
type Options struct {
	ModsKey         string // directive holding the mod id list (default "Mods")
	WorkshopKey     string // directive holding the workshop id list (default "WorkshopItems")
	LegacyModPrefix bool   // B42+ format: each mod id carries a leading backslash
}

func (o Options) withDefaults() Options {
	if o.ModsKey == "" {
		o.ModsKey = "Mods"
	}
	if o.WorkshopKey == "" {
		o.WorkshopKey = "WorkshopItems"
	}
	return o
}

// ReadLines reads the file and splits it into lines, each keeping its
// trailing newline. The final line may lack one; it is preserved as-is so a
// later render round-trips the file byte-for-byte.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text into lines, keeping each line's "\n" terminator.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			return lines
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
		if text == "" {
			return lines
		}
	}
}

// Parse extracts the mod id and workshop id lists from the file's lines.
// Every line is scanned; the last occurrence of each directive wins, matching
// how the game applies repeated assignments. All other lines are opaque.
func Parse(lines []string, opts Options) (modIDs, workshopIDs []string) {
	opts = opts.withDefaults()
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, opts.ModsKey+"=") {
			modIDs = nil
			for _, id := range parseSemicolonList(stripped) {
				if opts.LegacyModPrefix {
					id = strings.TrimLeft(id, `\`)
				}
				modIDs = append(modIDs, id)
			}
		} else if strings.HasPrefix(stripped, opts.WorkshopKey+"=") {
			workshopIDs = parseSemicolonList(stripped)
		}
	}
	return modIDs, workshopIDs
}

// parseSemicolonList splits "Key=a;b;c" into ["a","b","c"]. Internal empty
// segments are kept so positional correspondence between the two directives
// stays diagnosable; trailing empties from trailing semicolons are dropped.
func parseSemicolonList(line string) []string {
	_, value, _ := strings.Cut(line, "=")
	if strings.Trim(value, `;\ `) == "" {
		return nil
	}
	items := strings.Split(value, ";")
	for len(items) > 0 && items[len(items)-1] == "" {
		items = items[:len(items)-1]
	}
	return items
}

// Render produces a new line set with freshly formatted directive lines. The
// first occurrence of each directive is replaced in place and any duplicates
// are dropped, so a file with accidental repeated directives self-heals to
// one of each. A missing directive is appended. All other lines pass through
// untouched.
func Render(lines []string, modIDs, workshopIDs []string, opts Options) []string {
	opts = opts.withDefaults()

	formatted := make([]string, 0, len(modIDs))
	for _, id := range modIDs {
		if id == "" {
			continue
		}
		if opts.LegacyModPrefix {
			id = `\` + id
		}
		formatted = append(formatted, id)
	}
	modsLine := opts.ModsKey + "=" + strings.Join(formatted, ";") + "\n"
	// Workshop ids are written verbatim; deduplication is the caller's job.
	workshopLine := opts.WorkshopKey + "=" + strings.Join(workshopIDs, ";") + "\n"

	foundMods := false
	foundWorkshop := false
	newLines := make([]string, 0, len(lines)+2)
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, opts.ModsKey+"="):
			if !foundMods {
				newLines = append(newLines, modsLine)
				foundMods = true
			}
		case strings.HasPrefix(stripped, opts.WorkshopKey+"="):
			if !foundWorkshop {
				newLines = append(newLines, workshopLine)
				foundWorkshop = true
			}
		default:
			newLines = append(newLines, line)
		}
	}
	if !foundMods || !foundWorkshop {
		// An unterminated final line would otherwise concatenate with the
		// appended directive.
		if n := len(newLines); n > 0 && !strings.HasSuffix(newLines[n-1], "\n") {
			newLines[n-1] += "\n"
		}
	}
	if !foundMods {
		newLines = append(newLines, modsLine)
	}
	if !foundWorkshop {
		newLines = append(newLines, workshopLine)
	}
	return newLines
}

// WriteFile writes lines to path atomically: the content goes to a temp file
// in the same directory which is then renamed over the destination. On any
// failure the temp file is removed and the destination is left untouched.
func WriteFile(path string, lines []string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pzmod-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	for _, line := range lines {
		if _, err = tmp.WriteString(line); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("error writing temp file %s: %w", tmpPath, err)
		}
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error closing temp file %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the two directives from the file at path.
func Load(path string, opts Options) (modIDs, workshopIDs []string, err error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, nil, err
	}
	modIDs, workshopIDs = Parse(lines, opts)
	return modIDs, workshopIDs, nil
}

// Save rewrites the directive lines in the file at path, preserving all
// other content, via an atomic replace.
func Save(path string, modIDs, workshopIDs []string, opts Options) error {
	lines, err := ReadLines(path)
	if err != nil {
		return err
	}
	return WriteFile(path, Render(lines, modIDs, workshopIDs, opts))
}
