package catalog

import (
	"time"

	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/model/state"
	"github.com/atomhq/atom/policy"
)

// Catalog is a declarative bundle of vendor integrations: detection
// vocabulary, connector profiles and governance defaults.
type Catalog struct {
	Name     string                  `json:"name" yaml:"name"`
	Mappings []*intelligence.Mapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Profiles map[string]*Profile     `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Policy   *policy.Config          `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Profile describes how to reach one vendor API.  It is deliberately
// vendor-neutral: base URL, auth secret and generic operations only.
type Profile struct {
	Name          string                `json:"name" yaml:"name"`
	BaseURL       string                `json:"baseURL" yaml:"baseURL"`
	AuthSecretURL string                `json:"authSecretURL,omitempty" yaml:"authSecretURL,omitempty"`
	AuthKind      string                `json:"authKind,omitempty" yaml:"authKind,omitempty"` // bearer | basic | none
	CacheTTL      time.Duration         `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"`
	Retry         *Retry                `json:"retry,omitempty" yaml:"retry,omitempty"`
	Operations    map[string]*Operation `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// Retry controls connector retry behaviour for one profile.
type Retry struct {
	MaxRetries int           `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Delay      time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Operation maps a logical method name to an HTTP call shape.
type Operation struct {
	Name       string             `json:"name" yaml:"name"`
	Method     string             `json:"method" yaml:"method"` // HTTP verb
	Path       string             `json:"path" yaml:"path"`
	Parameters []*state.Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Operation returns the named operation of the profile, or nil.
func (p *Profile) Operation(name string) *Operation {
	if p == nil {
		return nil
	}
	return p.Operations[name]
}

// Profile returns the named connector profile, or nil.
func (c *Catalog) Profile(name string) *Profile {
	if c == nil {
		return nil
	}
	return c.Profiles[name]
}
