// Package catalog holds the static, process-wide list of feature keys a tenant can be granted.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Scope string

const (
	ScopeAdmin   Scope = "admin"
	ScopeGeneral Scope = "general"
)

// FeatureDefinition is one gatable module. Category and DisplayName are presentation
// metadata; enforcement only looks at Key.
type FeatureDefinition struct {
	Key         string `mapstructure:"key" json:"key" validate:"required,max=64"`
	DisplayName string `mapstructure:"name" json:"name" validate:"required"`
	Scope       Scope  `mapstructure:"scope" json:"scope" validate:"required,oneof=admin general"`
	Category    string `mapstructure:"category" json:"category,omitempty"`
}

var (
	ErrEmptyCatalog      = errors.New("empty_catalog")
	ErrDuplicateKey      = errors.New("duplicate_feature_key")
	ErrInvalidDefinition = errors.New("invalid_feature_definition")
)

// Catalog is immutable once built. All accessors return copies.
type Catalog struct {
	defs  []FeatureDefinition
	index map[string]int
}

// New validates the definitions and indexes them by key, keeping declaration order.
func New(defs []FeatureDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}

	validate := validator.New()
	c := &Catalog{
		defs:  make([]FeatureDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		def.Key = strings.TrimSpace(def.Key)
		def.DisplayName = strings.TrimSpace(def.DisplayName)
		def.Category = strings.TrimSpace(def.Category)
		def.Scope = Scope(strings.ToLower(strings.TrimSpace(string(def.Scope))))

		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %v", ErrInvalidDefinition, i, def.Key, err)
		}
		if _, exists := c.index[def.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, def.Key)
		}
		c.index[def.Key] = len(c.defs)
		c.defs = append(c.defs, def)
	}
	return c, nil
}

// MustNew is New for static tables known to be valid.
func MustNew(defs []FeatureDefinition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

func (c *Catalog) Get(key string) (FeatureDefinition, bool) {
	i, ok := c.index[key]
	if !ok {
		return FeatureDefinition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) Len() int {
	return len(c.defs)
}

// Keys returns every key in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.defs))
	for _, def := range c.defs {
		keys = append(keys, def.Key)
	}
	return keys
}

func (c *Catalog) Definitions() []FeatureDefinition {
	out := make([]FeatureDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) ByScope(scope Scope) []FeatureDefinition {
	out := make([]FeatureDefinition, 0)
	for _, def := range c.defs {
		if def.Scope == scope {
			out = append(out, def)
		}
	}
	return out
}

// Categories lists the distinct non-empty categories of general features in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, def := range c.defs {
		if def.Scope != ScopeGeneral || def.Category == "" {
			continue
		}
		if _, ok := seen[def.Category]; ok {
			continue
		}
		seen[def.Category] = struct{}{}
		out = append(out, def.Category)
	}
	return out
}

// Unknown returns the keys that are not part of the catalog, in input order.
func (c *Catalog) Unknown(keys []string) []string {
	var out []string
	for _, key := range keys {
		if !c.Has(key) {
			out = append(out, key)
		}
	}
	return out
}
