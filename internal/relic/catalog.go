package relic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog reads relic definitions from a fallback hierarchy of data
// directories. Each relic lives in <dir>/relics/<id>.yaml; the first
// directory that has the file wins.
type Catalog struct {
	dataDirs []string
	ev       *Evaluator
}

// NewCatalog creates a catalog that compiles relics with ev.
func NewCatalog(dataDirs []string, ev *Evaluator) *Catalog {
	return &Catalog{dataDirs: dataDirs, ev: ev}
}

func normalizeID(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), " ", "_")
}

// Definition loads the raw definition of a relic.
func (c *Catalog) Definition(id string) (Definition, error) {
	id = normalizeID(id)
	ref := filepath.Join("relics", id+".yaml")
	for _, dir := range c.dataDirs {
		path := filepath.Join(dir, ref)
		def, err := loadDefinition(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Definition{}, err
		}
		if def.ID == "" {
			def.ID = id
		}
		return def, nil
	}
	return Definition{}, fmt.Errorf("%w: %s", ErrUnknownRelic, id)
}

// Load loads and compiles a relic.
func (c *Catalog) Load(id string) (*Scripted, error) {
	def, err := c.Definition(id)
	if err != nil {
		return nil, err
	}
	return NewScripted(def, c.ev)
}

// List returns every definition visible through the hierarchy, sorted by
// ID. Directories that do not exist are skipped.
func (c *Catalog) List() ([]Definition, error) {
	seen := make(map[string]bool)
	var defs []Definition
	for _, dir := range c.dataDirs {
		entries, err := os.ReadDir(filepath.Join(dir, "relics"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read relic directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
				continue
			}
			id := strings.TrimSuffix(e.Name(), ".yaml")
			if seen[id] {
				continue
			}
			seen[id] = true
			def, err := loadDefinition(filepath.Join(dir, "relics", e.Name()))
			if err != nil {
				return nil, err
			}
			if def.ID == "" {
				def.ID = id
			}
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

func loadDefinition(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, err
	}
	defer f.Close()

	var def Definition
	if err := yaml.NewDecoder(f).Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("failed to decode relic %s: %w", path, err)
	}
	return def, nil
}
