// Package entity loads the immutable catalog of domain entities the
// resolver looks references up in. Definitions come from a YAML file and
// never change during a run.
package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"caprun/internal/domain"
)

// Catalog implements domain.EntityStore over an in-memory table.
type Catalog struct {
	byKey map[string]*domain.Entity
	order []*domain.Entity
}

type catalogFile struct {
	Entities []record `yaml:"entities"`
}

type record struct {
	Kind  string         `yaml:"kind"`
	ID    any            `yaml:"id"` // numeric ids are fine in YAML
	Name  string         `yaml:"name"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// LoadFile reads a catalog from a YAML file. A missing file yields an
// empty catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read entity catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse entity catalog: %w", err)
	}
	entities := make([]domain.Entity, 0, len(file.Entities))
	for _, r := range file.Entities {
		if r.Kind == "" || r.ID == nil {
			return nil, fmt.Errorf("entity catalog: every entity needs a kind and an id")
		}
		entities = append(entities, domain.Entity{
			Kind:  r.Kind,
			ID:    fmt.Sprint(r.ID),
			Name:  r.Name,
			Attrs: r.Attrs,
		})
	}
	return New(entities), nil
}

// New builds a catalog from loaded definitions.
func New(entities []domain.Entity) *Catalog {
	c := &Catalog{byKey: make(map[string]*domain.Entity, len(entities))}
	for i := range entities {
		e := entities[i]
		c.byKey[e.Kind+":"+e.ID] = &e
		c.order = append(c.order, &e)
	}
	return c
}

func (c *Catalog) Get(kind, id string) (*domain.Entity, bool) {
	e, ok := c.byKey[kind+":"+id]
	return e, ok
}

func (c *Catalog) List(kind string) []*domain.Entity {
	var out []*domain.Entity
	for _, e := range c.order {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
