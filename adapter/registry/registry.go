// Package registry contains the default implementation of
// [domain.SchemaProvider], holding the schemas declared by the application.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// DefaultOrder is the order of schemas that do not declare one.
const DefaultOrder = domain.FieldID

// ErrModelExists is returned when registering a name twice.
type ErrModelExists struct {
	Name string
}

// Error implements [error].
func (e ErrModelExists) Error() string {
	return fmt.Sprintf("model %q is already registered", e.Name)
}

// ErrInvalidSchema is returned for schemas that cannot be registered.
type ErrInvalidSchema struct {
	Name   string
	Reason string
}

// Error implements [error].
func (e ErrInvalidSchema) Error() string {
	return fmt.Sprintf("invalid schema %q: %s", e.Name, e.Reason)
}

// Registry implements [domain.SchemaProvider].
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]domain.Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]domain.Schema)}
}

// Register composes schema with its parent and stores it. Columns and
// defaults declared by schema replace the inherited ones with the same name.
// The registry keeps its own copy, so later changes to schema are not seen.
func (r *Registry) Register(schema domain.Schema) error {
	if schema.Name == "" {
		return ErrInvalidSchema{Reason: "empty name"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schemas[schema.Name]; ok {
		return ErrModelExists{Name: schema.Name}
	}

	res := domain.Schema{
		Name:     schema.Name,
		Inherit:  schema.Inherit,
		Table:    schema.Table,
		Order:    schema.Order,
		Columns:  make(map[string]domain.Column, len(schema.Columns)),
		Defaults: make(map[string]domain.DefaultFunc, len(schema.Defaults)),
	}

	if schema.Inherit != "" {
		parent, ok := r.schemas[schema.Inherit]
		if !ok {
			return domain.ErrUnknownModel{Name: schema.Inherit}
		}
		maps.Copy(res.Columns, parent.Columns)
		maps.Copy(res.Defaults, parent.Defaults)
		if res.Order == "" {
			res.Order = parent.Order
		}
	}

	for name, col := range schema.Columns {
		if col.Name == "" {
			col.Name = name
		}
		if col.Name != name {
			return ErrInvalidSchema{Name: schema.Name, Reason: fmt.Sprintf("column %q declared as %q", name, col.Name)}
		}
		if reserved(name) {
			return ErrInvalidSchema{Name: schema.Name, Reason: fmt.Sprintf("column %q is reserved", name)}
		}
		if col.Kind == domain.KindComputed && col.Compute == nil {
			return ErrInvalidSchema{Name: schema.Name, Reason: fmt.Sprintf("computed column %q has no function", name)}
		}
		res.Columns[name] = col
	}
	maps.Copy(res.Defaults, schema.Defaults)

	if res.Table == "" {
		res.Table = strings.ReplaceAll(res.Name, ".", "_")
	}
	if res.Order == "" {
		res.Order = DefaultOrder
	}

	r.schemas[res.Name] = res
	return nil
}

// Get implements [domain.SchemaProvider]. The returned schema is a copy.
func (r *Registry) Get(name string) (domain.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[name]
	if !ok {
		return domain.Schema{}, domain.ErrUnknownModel{Name: name}
	}
	schema.Columns = maps.Clone(schema.Columns)
	schema.Defaults = maps.Clone(schema.Defaults)
	return schema, nil
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.schemas))
}

func reserved(name string) bool {
	switch name {
	case domain.FieldID, "_id",
		domain.FieldCreateUID, domain.FieldCreateDate,
		domain.FieldWriteUID, domain.FieldWriteDate:
		return true
	}
	return false
}
