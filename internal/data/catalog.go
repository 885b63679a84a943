package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxCapacity bounds a single category pool.
const MaxCapacity = 10000

// Template describes what a pooled entity looks like.
type Template struct {
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
}

// PoolDef binds a category to its template and pool capacity.
type PoolDef struct {
	Category Category `yaml:"category"`
	Template string   `yaml:"template"`
	Capacity int      `yaml:"capacity"`
}

type catalogFile struct {
	Templates  []Template     `yaml:"templates"`
	Categories []PoolDef `yaml:"categories"`
}

// Catalog holds the entity templates and per-category pool sizes.
type Catalog struct {
	templates map[string]*Template
	order     []string
	pools     []PoolDef
}

// Template returns a template by name, or nil.
func (c *Catalog) Template(name string) *Template {
	return c.templates[name]
}

// Templates returns templates in file order.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.templates[name])
	}
	return out
}

// Pools returns category pools in file order.
func (c *Catalog) Pools() []PoolDef {
	return c.pools
}

// Pool returns the pool definition for a category.
func (c *Catalog) Pool(cat Category) (PoolDef, bool) {
	for _, s := range c.pools {
		if s.Category == cat {
			return s, true
		}
	}
	return PoolDef{}, false
}

// Count returns the number of configured categories.
func (c *Catalog) Count() int {
	return len(c.pools)
}

// NewCatalog builds a catalog from in-memory definitions. Capacity bounds
// and template references are checked when the pool is configured.
func NewCatalog(templates []Template, pools []PoolDef) *Catalog {
	c := &Catalog{
		templates: make(map[string]*Template, len(templates)),
		pools:     pools,
	}
	for i := range templates {
		t := &templates[i]
		if _, dup := c.templates[t.Name]; !dup {
			c.order = append(c.order, t.Name)
		}
		c.templates[t.Name] = t
	}
	return c
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return NewCatalog(f.Templates, f.Categories), nil
}

// LoadCatalog loads the category catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
