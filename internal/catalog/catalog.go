// Package catalog holds the immutable project catalog and the filter
// controller that derives the visible subset of it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog indicates the catalog data breaks an invariant.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Entry is one project in the catalog.
type Entry struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Image       string   `yaml:"image" json:"image"`
	TechStack   []string `yaml:"tech_stack" json:"tech_stack"`
	Category    Category `yaml:"category" json:"category"`
	LiveURL     string   `yaml:"live_url,omitempty" json:"live_url,omitempty"`
	SourceURL   string   `yaml:"source_url,omitempty" json:"source_url,omitempty"`
}

func (e Entry) clone() Entry {
	e.TechStack = append([]string(nil), e.TechStack...)
	return e
}

// Catalog is an ordered, immutable set of entries. It is safe for
// concurrent use because nothing mutates it after New returns.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries in declaration order.
// It rejects duplicate IDs and categories outside the declared set.
func New(entries []Entry) (*Catalog, error) {
	var errs []error
	seen := make(map[int]bool, len(entries))
	for i, e := range entries {
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("entry %d: duplicate id %d", i, e.ID))
		}
		seen[e.ID] = true
		if !e.Category.Valid() {
			errs = append(errs, fmt.Errorf("entry %d (id %d): category %q not in declared set", i, e.ID, e.Category))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}

	c := &Catalog{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		c.entries[i] = e.clone()
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// matching returns copies of the entries in category (or all for All),
// in catalog order, stopping after limit entries when limit >= 0.
func (c *Catalog) matching(category Category, limit int) []Entry {
	out := []Entry{}
	for _, e := range c.entries {
		if limit >= 0 && len(out) == limit {
			break
		}
		if category == All || e.Category == category {
			out = append(out, e.clone())
		}
	}
	return out
}

// file is the on-disk shape of the embedded catalog.
type file struct {
	Projects []Entry `yaml:"projects"`
}

// Load decodes a YAML catalog document and validates it.
func Load(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Projects)
}

//go:embed projects.yaml
var projectsYAML []byte

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Load(projectsYAML)
})

// Default returns the compiled-in catalog. It panics if the embedded data
// is invalid, which the package tests rule out.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}
