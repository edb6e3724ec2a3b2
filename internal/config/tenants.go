package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

const (
	// DefaultBaseURL is the conversation platform API root.
	DefaultBaseURL = "https://api.moveo.ai"

	// DefaultERVVariable is the context variable read when a tenant names none.
	DefaultERVVariable = "ERV"
)

// DefaultFunnelTags are used when a tenant does not list its own.
var DefaultFunnelTags = []string{"nao_conheco", "sou_eu", "bloquear"}

// Tenant is one client account: its platform credentials and aggregation settings.
type Tenant struct {
	Slug        string `yaml:"account_slug" json:"account_slug"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	DeskID      string `yaml:"desk_id" json:"-"`
	APIKey      string `yaml:"api_key" json:"-"`
	BaseURL     string `yaml:"base_url" json:"-"`

	model.TenantConfig `yaml:",inline"`
}

type tenantsFile struct {
	Tenants []Tenant `yaml:"tenants"`
}

// Registry is the static set of configured tenants.
type Registry struct {
	tenants map[string]Tenant
}

// LoadTenants reads and validates a YAML tenant file. Values of the form
// ${VAR} are expanded from the environment so secrets can stay out of the file.
// Tenants without a base_url use baseURL, or DefaultBaseURL when it is empty.
func LoadTenants(path, baseURL string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenants file: %w", err)
	}

	return ParseTenants(data, baseURL)
}

// ParseTenants builds a Registry from YAML content.
func ParseTenants(data []byte, baseURL string) (*Registry, error) {
	var file tenantsFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse tenants file: %w", err)
	}

	return newRegistry(baseURL, file.Tenants)
}

// NewRegistry validates tenants, fills defaults and indexes them by slug.
func NewRegistry(tenants ...Tenant) (*Registry, error) {
	return newRegistry(DefaultBaseURL, tenants)
}

func newRegistry(baseURL string, tenants []Tenant) (*Registry, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	r := &Registry{tenants: make(map[string]Tenant, len(tenants))}
	var errs []error
	for i, t := range tenants {
		t = withDefaults(t, baseURL)
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tenant %d (%q): %w", i, t.Slug, err))
			continue
		}
		if _, dup := r.tenants[t.Slug]; dup {
			errs = append(errs, fmt.Errorf("tenant %d: duplicate account_slug %q", i, t.Slug))
			continue
		}
		r.tenants[t.Slug] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Lookup returns the tenant for an account slug.
func (r *Registry) Lookup(slug string) (Tenant, bool) {
	t, ok := r.tenants[slug]
	return t, ok
}

// List returns every tenant ordered by slug.
func (r *Registry) List() []Tenant {
	out := make([]Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Len returns the number of configured tenants.
func (r *Registry) Len() int {
	return len(r.tenants)
}

func withDefaults(t Tenant, baseURL string) Tenant {
	if t.BaseURL == "" {
		t.BaseURL = baseURL
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Slug
	}
	if t.ERVVariable == "" {
		t.ERVVariable = DefaultERVVariable
	}
	if len(t.FunnelTags) == 0 {
		t.FunnelTags = append([]string(nil), DefaultFunnelTags...)
	}
	return t
}

// Validate checks that a tenant can be fetched and aggregated.
func (t Tenant) Validate() error {
	switch {
	case t.Slug == "":
		return errors.New("account_slug is required")
	case t.DeskID == "":
		return errors.New("desk_id is required")
	case t.APIKey == "":
		return errors.New("api_key is required")
	case t.TagKey == "":
		return errors.New("tag_key is required")
	}

	seen := make(map[string]bool, len(t.FunnelTags))
	for _, tag := range t.FunnelTags {
		if tag == "" {
			return errors.New("funnel_tags must not contain empty tags")
		}
		if tag == model.NoTagsLabel {
			return fmt.Errorf("funnel tag %q is reserved", tag)
		}
		if seen[tag] {
			return fmt.Errorf("duplicate funnel tag %q", tag)
		}
		seen[tag] = true
	}
	if !t.IsFunnelTag(t.TagKey) {
		return fmt.Errorf("tag_key %q is not one of the funnel_tags", t.TagKey)
	}
	return nil
}
