package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Shared extraction helpers: time windows, counts, entity patterns.

var (
	windowRe   = regexp.MustCompile(`(?i)\b(?:last|past|previous)?\s*(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m|days?|d|weeks?|w)\b`)
	bareWindow = regexp.MustCompile(`(?i)\b(?:last|past)\s+(hour|minute|day|week)\b`)
	countRe    = regexp.MustCompile(`(?i)\b(\d+)\s+(?:latest\s+|last\s+|recent\s+)?(?:builds?|jobs?|commits?|prs?|pull requests?|alerts?|transactions?|tickets?|results?)\b`)
	altCountRe = regexp.MustCompile(`(?i)\b(?:last|latest|recent|top)\s+(\d+)\b`)
)

// NormalizeWindow converts a free-form time window into a canonical
// duration string: "last 4 hours" -> "4h", "past 30 minutes" -> "30m",
// "2 days" -> "48h". Already-canonical values pass through.
func NormalizeWindow(text string) (string, bool) {
	if m := windowRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return "", false
		}
		switch unit := strings.ToLower(m[2]); unit[0] {
		case 'h':
			return fmt.Sprintf("%dh", n), true
		case 'm':
			return fmt.Sprintf("%dm", n), true
		case 'd':
			return fmt.Sprintf("%dh", n*24), true
		case 'w':
			return fmt.Sprintf("%dh", n*24*7), true
		}
	}
	if m := bareWindow.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "hour":
			return "1h", true
		case "minute":
			return "1m", true
		case "day":
			return "24h", true
		case "week":
			return "168h", true
		}
	}
	return "", false
}

// extractWindow returns a canonical window if the text mentions one.
func extractWindow(text string) (string, bool) {
	return NormalizeWindow(text)
}

// extractCount finds an item count like "last 5 builds" or "top 3".
// Window phrases are stripped first so "last 4 hours" is never a count.
func extractCount(text string) (string, bool) {
	cleaned := windowRe.ReplaceAllString(text, " ")
	if m := countRe.FindStringSubmatch(cleaned); m != nil {
		return m[1], true
	}
	if m := altCountRe.FindStringSubmatch(cleaned); m != nil {
		return m[1], true
	}
	return "", false
}
