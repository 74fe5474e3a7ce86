package ini

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a setting's value for editing and serialization. It is a
// closed set: every value is exactly one of these.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)

	minPattern     = regexp.MustCompile(`Min:\s*([\d.-]+)`)
	maxPattern     = regexp.MustCompile(`Max:\s*([\d.-]+)`)
	defaultPattern = regexp.MustCompile(`Default:\s*(\S+)`)
)

// InferKind classifies a raw value string.
func InferKind(value string) Kind {
	switch low := strings.ToLower(value); {
	case low == "true" || low == "false":
		return KindBool
	case intPattern.MatchString(value):
		return KindInt
	case floatPattern.MatchString(value):
		return KindFloat
	default:
		return KindText
	}
}

// Normalize validates raw input against the kind and returns the canonical
// on-disk form. Text passes through unchanged.
func (k Kind) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch k {
	case KindBool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return "", fmt.Errorf("%q is not a boolean", raw)
		}
		return strconv.FormatBool(b), nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%q is not an integer", raw)
		}
		return strconv.FormatInt(n, 10), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("%q is not a number", raw)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return raw, nil
	}
}

// Setting is one key=value pair from the server ini, with the preceding
// comment block and any Min/Max/Default hints the comment declares.
type Setting struct {
	Key     string
	Value   string
	Comment string
	Min     *float64
	Max     *float64
	Default string
}

// Kind returns the inferred value kind for the setting.
func (s Setting) Kind() Kind {
	return InferKind(s.Value)
}

// Keys owned by the mod list; the settings view must not touch them.
var modOwnedKeys = map[string]bool{
	"Mods":          true,
	"WorkshopItems": true,
	"Map":           true,
}

// ReadAllSettings parses every key=value pair from the ini except the
// mod-list-owned keys, attaching the comment lines immediately above each.
// Blank lines between a comment block and its key do not break the block.
func ReadAllSettings(path string) ([]Setting, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	var settings []Setting
	var commentLines []string
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "#"):
			commentLines = append(commentLines, strings.TrimLeft(stripped, "# "))
		case strings.Contains(stripped, "="):
			key, value, _ := strings.Cut(stripped, "=")
			key = strings.TrimSpace(key)
			if modOwnedKeys[key] {
				commentLines = nil
				continue
			}
			comment := strings.Join(commentLines, " ")
			commentLines = nil

			s := Setting{Key: key, Value: value, Comment: comment}
			if m := minPattern.FindStringSubmatch(comment); m != nil {
				if f, err := strconv.ParseFloat(m[1], 64); err == nil {
					s.Min = &f
				}
			}
			if m := maxPattern.FindStringSubmatch(comment); m != nil {
				if f, err := strconv.ParseFloat(m[1], 64); err == nil {
					s.Max = &f
				}
			}
			if m := defaultPattern.FindStringSubmatch(comment); m != nil {
				s.Default = m[1]
			}
			settings = append(settings, s)
		case stripped == "":
			// keep accumulating across blanks between comment and key
		default:
			commentLines = nil
		}
	}
	return settings, nil
}

// WriteSettings rewrites the given key=value pairs in place, preserving all
// other lines, via an atomic replace.
func WriteSettings(path string, changes map[string]string) error {
	lines, err := ReadLines(path)
	if err != nil {
		return err
	}

	newLines := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.Contains(stripped, "=") && !strings.HasPrefix(stripped, "#") {
			key, _, _ := strings.Cut(stripped, "=")
			key = strings.TrimSpace(key)
			if value, ok := changes[key]; ok {
				newLines = append(newLines, key+"="+value+"\n")
				continue
			}
		}
		newLines = append(newLines, line)
	}
	return WriteFile(path, newLines)
}

// ReadBool reads a single boolean setting, returning def when the key is
// absent.
func ReadBool(path, key string, def bool) (bool, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return def, err
	}
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, key+"=") {
			_, value, _ := strings.Cut(stripped, "=")
			return strings.EqualFold(strings.TrimSpace(value), "true"), nil
		}
	}
	return def, nil
}
