// Package data loads prefab tables: named component bundles that spawn
// into a world through the codec registry.
package data

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/internal/codec"
)

// PrefabTemplate is one named bundle of component values.
type PrefabTemplate struct {
	Name       string                    `yaml:"name"`
	Tags       []string                  `yaml:"tags"`
	Components map[string]map[string]any `yaml:"components"`
}

// SpawnEntry requests count instances of a prefab at world load.
type SpawnEntry struct {
	Prefab string `yaml:"prefab"`
	Count  int    `yaml:"count"`
}

type prefabFile struct {
	Prefabs []PrefabTemplate `yaml:"prefabs"`
	Spawns  []SpawnEntry     `yaml:"spawns"`
}

// PrefabTable holds prefab templates indexed by name, plus the initial
// spawn list.
type PrefabTable struct {
	templates map[string]*PrefabTemplate
	spawns    []SpawnEntry
}

// LoadPrefabTable loads prefabs from a YAML file.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefabs: %w", err)
	}
	return ParsePrefabTable(raw)
}

// ParsePrefabTable parses prefab YAML from memory.
func ParsePrefabTable(raw []byte) (*PrefabTable, error) {
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefabs: %w", err)
	}
	t := &PrefabTable{
		templates: make(map[string]*PrefabTemplate, len(f.Prefabs)),
		spawns:    f.Spawns,
	}
	for i := range f.Prefabs {
		p := &f.Prefabs[i]
		if p.Name == "" {
			return nil, fmt.Errorf("parse prefabs: template %d has no name", i)
		}
		t.templates[p.Name] = p
	}
	return t, nil
}

// Get returns a prefab template by name, or nil.
func (t *PrefabTable) Get(name string) *PrefabTemplate {
	return t.templates[name]
}

// Count returns the number of loaded templates.
func (t *PrefabTable) Count() int {
	return len(t.templates)
}

// Spawns returns the initial spawn list.
func (t *PrefabTable) Spawns() []SpawnEntry {
	return t.spawns
}

// Spawner instantiates prefabs into a world. Component data goes YAML →
// JSON → registry decode, so prefab field names follow the components'
// json tags.
type Spawner struct {
	table *PrefabTable
	reg   *codec.Registry
}

func NewSpawner(table *PrefabTable, reg *codec.Registry) *Spawner {
	return &Spawner{table: table, reg: reg}
}

// Spawn creates one entity from the named prefab.
func (s *Spawner) Spawn(w *ecs.World, name string) (ecs.Entity, error) {
	tpl := s.table.Get(name)
	if tpl == nil {
		return ecs.Null, fmt.Errorf("spawn: unknown prefab %q", name)
	}
	comps, err := s.build(tpl)
	if err != nil {
		return ecs.Null, err
	}
	e, err := w.Create(comps...)
	if err != nil {
		return ecs.Null, fmt.Errorf("spawn %q: %w", name, err)
	}
	return e, nil
}

// SpawnAll runs the table's spawn list, returning the created entities.
func (s *Spawner) SpawnAll(w *ecs.World) ([]ecs.Entity, error) {
	var out []ecs.Entity
	for _, entry := range s.table.Spawns() {
		for i := 0; i < entry.Count; i++ {
			e, err := s.Spawn(w, entry.Prefab)
			if err != nil {
				return out, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Spawner) build(tpl *PrefabTemplate) ([]any, error) {
	comps := make([]any, 0, len(tpl.Components)+len(tpl.Tags))
	for compName, fields := range tpl.Components {
		payload, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("prefab %q component %s: %w", tpl.Name, compName, err)
		}
		c, err := s.reg.Decode(compName, payload)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", tpl.Name, err)
		}
		comps = append(comps, c)
	}
	for _, tag := range tpl.Tags {
		comps = append(comps, ecs.TagFor(tag))
	}
	return comps, nil
}
