package agent

import (
	"regexp"
	"strings"

	"github.com/zen-systems/opsgate/pkg/catalog"
)

// Per-domain extraction rules. Each works on the raw input and returns
// candidate values for the operation's declared parameters; anything
// undeclared is discarded by the agent.

var (
	repoSlugRe  = regexp.MustCompile(`\b([A-Za-z][\w.-]*)/([A-Za-z][\w.-]*)\b`)
	repoWordRe  = regexp.MustCompile(`(?i)\brepo(?:sitory)?\s+([\w.-]+)`)
	branchRe    = regexp.MustCompile(`(?i)\b(?:branch\s+)?(rc\d|main|master|develop)\b`)
	pullStateRe = regexp.MustCompile(`(?i)\b(open|closed|all)\b`)

	folderRe      = regexp.MustCompile(`(?i)\bfolder\s+([\w-]+)(?:\s+and\s+sub\s*folder\s+([\w-]+))?`)
	jobRe         = regexp.MustCompile(`(?i)\bjob\s+([\w-]+)`)
	buildNumRe    = regexp.MustCompile(`(?i)\bbuild\s+(?:#|number\s+)?(\d+)`)
	buildStatusRe = regexp.MustCompile(`(?i)\b(failed|failing|success|successful|running|aborted)\b`)
	inFolderRe    = regexp.MustCompile(`(?i)\b(?:in|from|for)\s+([\w-]+(?:-[\w-]+)*)\s*$`)

	ticketKeyRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]*-\d+)\b`)
	projectRe   = regexp.MustCompile(`(?i)\bproject\s+([A-Za-z0-9]+)`)
	aboutRe     = regexp.MustCompile(`(?i)\babout\s+(.+)$`)
	quotedRe    = regexp.MustCompile(`"([^"]+)"`)

	classKeywordRe = regexp.MustCompile(`(?i)\b(?:class|method|function)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	pascalRe       = regexp.MustCompile(`\b([A-Z][a-z0-9]+(?:[A-Z][A-Za-z0-9]*)+)\b`)
	directionRe    = regexp.MustCompile(`(?i)\b(upstream|downstream|both)\b`)

	appForRe   = regexp.MustCompile(`(?i)\bfor\s+(.+?)(?:\s+in\s+the\s+(?:last|past)\b.*)?$`)
	severityRe = regexp.MustCompile(`(?i)\b(critical|warning|info)\b`)
)

// Extractors returns the built-in per-domain extraction rules, keyed by
// the default catalog's domain names.
func Extractors() map[string]ExtractFunc {
	return map[string]ExtractFunc{
		"source-control": extractSourceControl,
		"build-system":   extractBuild,
		"issue-tracker":  extractIssue,
		"graph":          extractGraph,
		"monitoring":     extractMonitoring,
	}
}

func extractSourceControl(text string, op *catalog.Operation) map[string]string {
	values := make(map[string]string)

	if m := repoSlugRe.FindStringSubmatch(text); m != nil {
		values["org"] = m[1]
		values["repo"] = m[2]
	} else if m := repoWordRe.FindStringSubmatch(text); m != nil {
		values["repo"] = m[1]
	}
	if m := branchRe.FindStringSubmatch(text); m != nil {
		values["branch"] = strings.ToUpper(m[1])
		if !strings.HasPrefix(values["branch"], "RC") {
			values["branch"] = strings.ToLower(values["branch"])
		}
	}
	if c, ok := extractCount(text); ok {
		values["count"] = c
	}
	if op.Name == "list-pulls" {
		if m := pullStateRe.FindStringSubmatch(text); m != nil {
			values["state"] = strings.ToLower(m[1])
		}
	}
	return values
}

func extractBuild(text string, op *catalog.Operation) map[string]string {
	values := make(map[string]string)

	if strings.Contains(strings.ToLower(text), "deploy-all") {
		values["folder"] = "deploy-all"
	} else if m := folderRe.FindStringSubmatch(text); m != nil {
		folder := strings.ToLower(m[1])
		if !strings.HasSuffix(folder, "_multi") {
			folder += "_multi"
		}
		if m[2] != "" {
			folder += "/" + strings.ToUpper(m[2])
		}
		values["folder"] = folder
	} else if m := inFolderRe.FindStringSubmatch(windowRe.ReplaceAllString(text, "")); m != nil {
		values["folder"] = strings.ToLower(m[1])
	}

	if m := buildStatusRe.FindStringSubmatch(text); m != nil {
		status := strings.ToLower(m[1])
		switch status {
		case "failing":
			status = "failed"
		case "successful":
			status = "success"
		}
		values["status"] = status
	}
	if m := jobRe.FindStringSubmatch(text); m != nil && !isNoiseJobWord(m[1]) {
		values["job"] = strings.ToLower(m[1])
	}
	if m := buildNumRe.FindStringSubmatch(text); m != nil {
		values["build"] = m[1]
	}
	if w, ok := extractWindow(text); ok {
		values["window"] = w
	}
	if c, ok := extractCount(text); ok {
		values["count"] = c
	}
	return values
}

// isNoiseJobWord filters "job status"-style phrases where the word
// after "job" is not a job name.
func isNoiseJobWord(word string) bool {
	switch strings.ToLower(word) {
	case "status", "statuses", "parameters", "params", "number", "console", "log", "logs":
		return true
	}
	return false
}

func extractIssue(text string, op *catalog.Operation) map[string]string {
	values := make(map[string]string)

	if m := ticketKeyRe.FindStringSubmatch(text); m != nil {
		values["key"] = m[1]
	}
	if m := projectRe.FindStringSubmatch(text); m != nil {
		values["project"] = strings.ToUpper(m[1])
	}
	switch op.Name {
	case "search-tickets":
		if m := quotedRe.FindStringSubmatch(text); m != nil {
			values["text"] = m[1]
		} else if m := aboutRe.FindStringSubmatch(text); m != nil {
			values["text"] = strings.TrimSpace(m[1])
		}
	case "add-comment":
		if m := quotedRe.FindStringSubmatch(text); m != nil {
			values["body"] = m[1]
		}
	}
	return values
}

func extractGraph(text string, op *catalog.Operation) map[string]string {
	values := make(map[string]string)

	if m := classKeywordRe.FindStringSubmatch(text); m != nil {
		values["class"] = m[1]
	} else if m := pascalRe.FindStringSubmatch(text); m != nil {
		values["class"] = m[1]
	}
	if m := directionRe.FindStringSubmatch(text); m != nil {
		values["direction"] = strings.ToLower(m[1])
	}
	if op.Name == "cypher-query" {
		if m := quotedRe.FindStringSubmatch(text); m != nil {
			values["query"] = m[1]
		}
	}
	return values
}

func extractMonitoring(text string, op *catalog.Operation) map[string]string {
	values := make(map[string]string)

	if m := appForRe.FindStringSubmatch(text); m != nil {
		values["application"] = strings.TrimSpace(m[1])
	}
	if m := severityRe.FindStringSubmatch(text); m != nil {
		values["severity"] = strings.ToLower(m[1])
	}
	if w, ok := extractWindow(text); ok {
		values["window"] = w
	}
	return values
}
