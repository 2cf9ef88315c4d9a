package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jacksonlee411/jobdesk/pkg/permset"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Catalog lays out the permission strings of the role screen as category
// tables. A row marked exclusive behaves like a radio group: at most one of
// its permissions may be granted.
type Catalog struct {
	Version    int        `yaml:"version"`
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Rows  []Row  `yaml:"rows"`
}

type Row struct {
	Label     string  `yaml:"label"`
	Exclusive bool    `yaml:"exclusive"`
	Options   []Entry `yaml:"options"`
}

type Entry struct {
	Permission string `yaml:"permission"`
	Label      string `yaml:"label"`
}

func ParseCatalogYAML(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.Version != 1 {
		return nil, errors.New("catalog: unsupported version")
	}
	if len(c.Categories) == 0 {
		return nil, errors.New("catalog: missing categories")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalogYAML(b)
}

// Default returns the built-in catalog of the admin screens.
func Default() *Catalog {
	c, err := ParseCatalogYAML(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default: %v", err))
	}
	return c
}

func (c *Catalog) validate() error {
	keys := map[string]bool{}
	perms := map[string]bool{}
	for ci := range c.Categories {
		cat := &c.Categories[ci]
		cat.Key = strings.TrimSpace(cat.Key)
		if cat.Key == "" {
			return fmt.Errorf("catalog: category[%d]: key is required", ci)
		}
		if keys[cat.Key] {
			return fmt.Errorf("catalog: duplicate category %q", cat.Key)
		}
		keys[cat.Key] = true
		for ri := range cat.Rows {
			row := &cat.Rows[ri]
			if len(row.Options) == 0 {
				return fmt.Errorf("catalog: %s row %d: no options", cat.Key, ri)
			}
			if row.Exclusive && len(row.Options) < 2 {
				return fmt.Errorf("catalog: %s row %d: exclusive row needs at least two options", cat.Key, ri)
			}
			for ei := range row.Options {
				e := &row.Options[ei]
				e.Permission = strings.TrimSpace(e.Permission)
				if e.Permission == "" {
					return fmt.Errorf("catalog: %s row %d: permission is required", cat.Key, ri)
				}
				if perms[e.Permission] {
					return fmt.Errorf("catalog: duplicate permission %q", e.Permission)
				}
				perms[e.Permission] = true
			}
		}
	}
	return nil
}

// Groups returns the exclusive rows as permset groups.
func (c *Catalog) Groups() []permset.Group {
	var out []permset.Group
	for _, cat := range c.Categories {
		for _, row := range cat.Rows {
			if !row.Exclusive {
				continue
			}
			g := make(permset.Group, 0, len(row.Options))
			for _, e := range row.Options {
				g = append(g, e.Permission)
			}
			out = append(out, g)
		}
	}
	return out
}

func (c *Catalog) Permissions() []string {
	var out []string
	for _, cat := range c.Categories {
		for _, row := range cat.Rows {
			for _, e := range row.Options {
				out = append(out, e.Permission)
			}
		}
	}
	return out
}

func (c *Catalog) Contains(permission string) bool {
	permission = strings.TrimSpace(permission)
	for _, p := range c.Permissions() {
		if p == permission {
			return true
		}
	}
	return false
}

// NewSet returns an empty permission set governed by the catalog's groups.
func (c *Catalog) NewSet(perms ...string) permset.Set {
	return permset.New(c.Groups(), perms...)
}

// Unknown lists granted permissions the catalog does not define.
func (c *Catalog) Unknown(s permset.Set) []string {
	var out []string
	for _, p := range s.List() {
		if !c.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}
