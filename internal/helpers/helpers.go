package helpers

import (
	"regexp"
	"strings"
)

var urlIDPattern = regexp.MustCompile(`[?&]id=(\d+)`)

// ExtractWorkshopID pulls a numeric workshop id out of user input. Accepts a
// bare id ("2875848298") or a workshop URL carrying an id parameter
// ("https://steamcommunity.com/sharedfiles/filedetails/?id=2875848298").
// Returns "" when no id is found.
func ExtractWorkshopID(input string) string {
	text := strings.TrimSpace(input)
	if text == "" {
		return ""
	}
	if isDigits(text) {
		return text
	}
	if m := urlIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// EscapeDockerModID formats a mod id for a Docker env var: a double
// backslash prefix so the container receives a single one, with special
// characters like & backslash-escaped.
func EscapeDockerModID(modID string) string {
	escaped := strings.ReplaceAll(modID, "&", `\&`)
	return `\\` + escaped
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
