package agent

import (
	"context"
	"testing"

	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/intent"
)

func buildAgent(t *testing.T, domain string) *CatalogAgent {
	t.Helper()
	d, ok := catalog.Default().Domain(domain)
	if !ok {
		t.Fatalf("domain %s missing from default catalog", domain)
	}
	detector := intent.NewDetector(nil, intent.NewPatternStrategy())
	return New(*d, detector, Extractors()[domain])
}

func TestResolveBuildStatusQuery(t *testing.T) {
	a := buildAgent(t, "build-system")

	decision, clar, err := a.Resolve(context.Background(), "show failed jobs in deploy-all in the last 4 hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clar != nil {
		t.Fatalf("unexpected clarification: %+v", clar)
	}
	if decision.Operation != "status-query" {
		t.Fatalf("expected status-query, got %s", decision.Operation)
	}

	want := map[string]string{"folder": "deploy-all", "status": "failed", "window": "4h", "count": "5"}
	for k, v := range want {
		if decision.Params[k] != v {
			t.Fatalf("param %s: got %q want %q (all: %+v)", k, decision.Params[k], v, decision.Params)
		}
	}
	if len(decision.Origin) == 0 || decision.Origin[0].Stage != "operation" {
		t.Fatalf("decision should carry an operation origin, got %+v", decision.Origin)
	}
}

func TestResolveMissingRequiredParam(t *testing.T) {
	a := buildAgent(t, "build-system")

	decision, clar, err := a.Resolve(context.Background(), "show me failed builds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != nil {
		t.Fatalf("missing folder must not produce a decision: %+v", decision)
	}
	if clar == nil || len(clar.Missing) != 1 || clar.Missing[0] != "folder" {
		t.Fatalf("expected clarification naming folder, got %+v", clar)
	}
}

func TestResolveUnknownOperationListsOptions(t *testing.T) {
	a := buildAgent(t, "build-system")

	decision, clar, err := a.Resolve(context.Background(), "please just make it nice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != nil {
		t.Fatalf("no trigger match must not produce a decision: %+v", decision)
	}
	if clar == nil || clar.Domain != "build-system" {
		t.Fatalf("expected clarification for the domain, got %+v", clar)
	}
}

func TestResolveSubFolderNormalization(t *testing.T) {
	a := buildAgent(t, "build-system")

	decision, clar, err := a.Resolve(context.Background(), "show failed builds in folder scimarketplace and sub folder deploy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clar != nil {
		t.Fatalf("unexpected clarification: %+v", clar)
	}
	if decision.Params["folder"] != "scimarketplace_multi/DEPLOY" {
		t.Fatalf("folder normalization mismatch: %q", decision.Params["folder"])
	}
}

func TestResolveIssueTicket(t *testing.T) {
	a := buildAgent(t, "issue-tracker")

	decision, clar, err := a.Resolve(context.Background(), "show ticket PROJ-1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clar != nil {
		t.Fatalf("unexpected clarification: %+v", clar)
	}
	if decision.Operation != "get-ticket" || decision.Params["key"] != "PROJ-1234" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestNormalizeValue(t *testing.T) {
	enum := &catalog.Param{Name: "status", Type: catalog.ParamEnum, Values: []string{"failed", "success", "any"}}
	num := &catalog.Param{Name: "count", Type: catalog.ParamInt}
	win := &catalog.Param{Name: "window", Type: catalog.ParamDuration}
	str := &catalog.Param{Name: "folder", Type: catalog.ParamString}

	tests := []struct {
		p    *catalog.Param
		raw  string
		want string
		ok   bool
	}{
		{enum, "FAILED", "failed", true},
		{enum, "bogus", "", false},
		{num, "12", "12", true},
		{num, "twelve", "", false},
		{win, "last 4 hours", "4h", true},
		{win, "4h", "4h", true},
		{win, "soonish", "", false},
		{str, "  deploy-all  ", "deploy-all", true},
		{str, "", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeValue(tt.p, tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("NormalizeValue(%s, %q) = %q,%v want %q,%v", tt.p.Name, tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeWindow(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"last 4 hours", "4h", true},
		{"past 30 minutes", "30m", true},
		{"previous 2 days", "48h", true},
		{"1 week", "168h", true},
		{"last hour", "1h", true},
		{"last week", "168h", true},
		{"whenever", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeWindow(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("NormalizeWindow(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractCountIgnoresWindows(t *testing.T) {
	if _, ok := extractCount("failed jobs in the last 4 hours"); ok {
		t.Fatalf("window phrase must not parse as a count")
	}
	if c, ok := extractCount("show last 5 builds"); !ok || c != "5" {
		t.Fatalf("expected count 5, got %q,%v", c, ok)
	}
	if c, ok := extractCount("top 3 in the last 2 days"); !ok || c != "3" {
		t.Fatalf("expected count 3, got %q,%v", c, ok)
	}
}
