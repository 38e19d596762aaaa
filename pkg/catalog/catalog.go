package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParamType identifies how a parameter value is validated.
type ParamType string

const (
	ParamString   ParamType = "string"
	ParamInt      ParamType = "int"
	ParamDuration ParamType = "duration"
	ParamEnum     ParamType = "enum"
)

// Param declares one parameter of an operation.
type Param struct {
	Name     string    `yaml:"name"`
	Type     ParamType `yaml:"type"`
	Required bool      `yaml:"required,omitempty"`
	Default  string    `yaml:"default,omitempty"`
	Values   []string  `yaml:"values,omitempty"`
}

// Operation declares a sub-operation within a domain, including the
// trigger phrases used for deterministic matching and the parameter
// schema enforced before dispatch.
type Operation struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Triggers    []string `yaml:"triggers"`
	Params      []Param  `yaml:"params,omitempty"`
}

// Domain declares a top-level capability area. Description and Examples
// feed the classifier prompt; Triggers feed the pattern fallback.
type Domain struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Triggers    []string    `yaml:"triggers"`
	Examples    []string    `yaml:"examples,omitempty"`
	Operations  []Operation `yaml:"operations"`
}

// Catalog is the ordered set of domains. Order is significant: equal
// classification scores resolve to the earlier entry.
type Catalog struct {
	Domains []Domain `yaml:"domains"`
}

// Domain returns the domain with the given name.
func (c *Catalog) Domain(name string) (*Domain, bool) {
	for i := range c.Domains {
		if c.Domains[i].Name == name {
			return &c.Domains[i], true
		}
	}
	return nil, false
}

// Names returns domain names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		names = append(names, d.Name)
	}
	return names
}

// Operation returns the operation with the given name.
func (d *Domain) Operation(name string) (*Operation, bool) {
	for i := range d.Operations {
		if d.Operations[i].Name == name {
			return &d.Operations[i], true
		}
	}
	return nil, false
}

// Param returns the parameter declaration with the given name.
func (o *Operation) Param(name string) (*Param, bool) {
	for i := range o.Params {
		if o.Params[i].Name == name {
			return &o.Params[i], true
		}
	}
	return nil, false
}

// MissingRequired returns the names of required parameters absent from
// the given values, in schema order.
func (o *Operation) MissingRequired(values map[string]string) []string {
	var missing []string
	for _, p := range o.Params {
		if !p.Required {
			continue
		}
		if v, ok := values[p.Name]; !ok || v == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// ApplyDefaults fills in declared defaults for parameters absent from
// the given values, returning a new map.
func (o *Operation) ApplyDefaults(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, p := range o.Params {
		if p.Default == "" {
			continue
		}
		if _, ok := out[p.Name]; !ok {
			out[p.Name] = p.Default
		}
	}
	return out
}

// Validate checks catalog structural invariants: non-empty, unique
// domain and operation names, enum params carrying value sets.
func (c *Catalog) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("catalog has no domains")
	}
	seen := make(map[string]bool)
	for _, d := range c.Domains {
		if d.Name == "" {
			return fmt.Errorf("domain with empty name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate domain %q", d.Name)
		}
		seen[d.Name] = true
		if len(d.Operations) == 0 {
			return fmt.Errorf("domain %q has no operations", d.Name)
		}
		ops := make(map[string]bool)
		for _, op := range d.Operations {
			if op.Name == "" {
				return fmt.Errorf("domain %q has operation with empty name", d.Name)
			}
			if ops[op.Name] {
				return fmt.Errorf("domain %q has duplicate operation %q", d.Name, op.Name)
			}
			ops[op.Name] = true
			for _, p := range op.Params {
				if p.Type == ParamEnum && len(p.Values) == 0 {
					return fmt.Errorf("%s/%s param %q is enum without values", d.Name, op.Name, p.Name)
				}
			}
		}
	}
	return nil
}

// Load reads a catalog from a YAML file and validates it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &c, nil
}
