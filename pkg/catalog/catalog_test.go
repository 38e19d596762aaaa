package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("built-in catalog should validate: %v", err)
	}

	want := []string{"source-control", "build-system", "issue-tracker", "graph", "monitoring"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d domains, got %v", len(want), got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Fatalf("domain order mismatch at %d: got %s want %s", i, got[i], name)
		}
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	c := &Catalog{Domains: []Domain{
		{Name: "alpha", Operations: []Operation{{Name: "op"}}},
		{Name: "alpha", Operations: []Operation{{Name: "op"}}},
	}}
	if err := c.Validate(); err == nil {
		t.Fatalf("duplicate domain names should fail validation")
	}

	c = &Catalog{Domains: []Domain{
		{Name: "alpha", Operations: []Operation{{Name: "op"}, {Name: "op"}}},
	}}
	if err := c.Validate(); err == nil {
		t.Fatalf("duplicate operation names should fail validation")
	}
}

func TestValidateRejectsEnumWithoutValues(t *testing.T) {
	c := &Catalog{Domains: []Domain{
		{Name: "alpha", Operations: []Operation{
			{Name: "op", Params: []Param{{Name: "state", Type: ParamEnum}}},
		}},
	}}
	if err := c.Validate(); err == nil {
		t.Fatalf("enum param without values should fail validation")
	}
}

func TestMissingRequiredSchemaOrder(t *testing.T) {
	op := &Operation{Params: []Param{
		{Name: "folder", Required: true},
		{Name: "status", Default: "any"},
		{Name: "job", Required: true},
	}}

	missing := op.MissingRequired(map[string]string{"status": "failed", "job": ""})
	if len(missing) != 2 || missing[0] != "folder" || missing[1] != "job" {
		t.Fatalf("expected [folder job], got %v", missing)
	}

	if missing := op.MissingRequired(map[string]string{"folder": "x", "job": "y"}); missing != nil {
		t.Fatalf("expected no missing params, got %v", missing)
	}
}

func TestApplyDefaultsDoesNotOverride(t *testing.T) {
	op := &Operation{Params: []Param{
		{Name: "window", Default: "24h"},
		{Name: "count", Default: "5"},
	}}

	out := op.ApplyDefaults(map[string]string{"window": "4h"})
	if out["window"] != "4h" {
		t.Fatalf("explicit value should win over default, got %q", out["window"])
	}
	if out["count"] != "5" {
		t.Fatalf("absent value should pick up default, got %q", out["count"])
	}
}

func TestLoadFromYAML(t *testing.T) {
	doc := `domains:
  - name: build-system
    triggers: [build, jenkins]
    operations:
      - name: status-query
        triggers: [status]
        params:
          - name: folder
            type: string
            required: true
          - name: status
            type: enum
            default: any
            values: [failed, success, any]
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, ok := c.Domain("build-system")
	if !ok {
		t.Fatalf("domain missing after load")
	}
	op, ok := d.Operation("status-query")
	if !ok {
		t.Fatalf("operation missing after load")
	}
	p, ok := op.Param("status")
	if !ok || p.Type != ParamEnum || p.Default != "any" {
		t.Fatalf("unexpected param: %+v", p)
	}
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("domains: []\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("empty catalog should fail to load")
	}
}
