// Package catalog is the Service Catalog Adapter: it enumerates
// services and operations, and reports the input/output shape of a
// given operation, tolerating kebab-case, snake_case, and CamelCase
// spellings interchangeably.
package catalog

import (
	"fmt"
	"sort"

	"awsquery/internal/normalize"
)

// FieldKind classifies an input field's AWS shape so the resolver knows
// how to merge a harvested value into it.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindList
	KindStruct
)

func (k FieldKind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return "scalar"
	}
}

// InputField describes one member of an operation's input shape.
type InputField struct {
	Name     string
	Required bool
	Kind     FieldKind
}

// OperationShape is everything the resolver and invoker need to know
// about one operation: what it takes, and where its primary list lives
// in the response.
type OperationShape struct {
	Action string
	Inputs []InputField
	// OutputListKey names the response field that carries the primary
	// list, when the operation has an obvious one. Empty means the
	// catalog could not determine a single candidate; the Flattener
	// makes the final call at runtime from the actual response shape.
	OutputListKey string
}

// Catalog is the contract the resolver and invoker depend on. Two
// implementations exist: a static, hand-maintained table for the
// services this build ships client bindings for (static_shapes.go),
// and a reflection-based fallback for anything else
// (reflect_shapes.go). Catalog composes both so callers never have to
// know which one answered.
type Catalog interface {
	ListServices() []string
	ListOperations(service string) ([]string, error)
	Describe(service, action string) (OperationShape, error)
	NormalizeAction(service, action string) (string, error)
}

// ServiceRegistry is the subset of awsclient's client registry the
// reflection fallback needs: a live SDK client value per service name,
// used to discover operations and shapes for services with no static
// entry.
type ServiceRegistry interface {
	ServiceNames() []string
	ClientFor(service string) (any, bool)
}

// New builds the composed catalog: static table first, reflection
// fallback second.
func New(registry ServiceRegistry) *Composed {
	return &Composed{static: staticTable, registry: registry}
}

// Composed is the default Catalog: static_shapes.go data, augmented by
// reflect_shapes.go for services with a live client but no static
// entry.
type Composed struct {
	static   map[string]serviceShapes
	registry ServiceRegistry
}

func (c *Composed) ListServices() []string {
	seen := map[string]bool{}
	var names []string
	for svc := range c.static {
		if !seen[svc] {
			seen[svc] = true
			names = append(names, svc)
		}
	}
	if c.registry != nil {
		for _, svc := range c.registry.ServiceNames() {
			if !seen[svc] {
				seen[svc] = true
				names = append(names, svc)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (c *Composed) ListOperations(service string) ([]string, error) {
	svcKey := normalize.Key(service)
	if shapes, ok := c.lookupService(svcKey); ok {
		names := make([]string, 0, len(shapes))
		for action := range shapes {
			names = append(names, action)
		}
		sort.Strings(names)
		return names, nil
	}
	if c.registry != nil {
		if client, ok := c.registry.ClientFor(service); ok {
			return reflectOperations(client), nil
		}
	}
	return nil, fmt.Errorf("unknown service %q", service)
}

func (c *Composed) Describe(service, action string) (OperationShape, error) {
	svcKey := normalize.Key(service)
	actionKey := normalize.Key(action)
	if shapes, ok := c.lookupService(svcKey); ok {
		for canonical, shape := range shapes {
			if normalize.Key(canonical) == actionKey {
				shape.Action = canonical
				return shape, nil
			}
		}
	}
	if c.registry != nil {
		if client, ok := c.registry.ClientFor(service); ok {
			shape, canonical, err := reflectDescribe(client, actionKey)
			if err == nil {
				shape.Action = canonical
				return shape, nil
			}
		}
	}
	return OperationShape{}, fmt.Errorf("unknown action %q for service %q", action, service)
}

// NormalizeAction resolves a raw CLI spelling to the catalog's
// canonical (SDK method) spelling, e.g. "describe-instances" ->
// "DescribeInstances". It is the "normalize action to canonical
// casing" step spec component 4.A depends on.
func (c *Composed) NormalizeAction(service, action string) (string, error) {
	shape, err := c.Describe(service, action)
	if err != nil {
		return "", err
	}
	return shape.Action, nil
}

func (c *Composed) lookupService(key string) (serviceShapes, bool) {
	for svc, shapes := range c.static {
		if normalize.Key(svc) == key {
			return shapes, true
		}
	}
	return nil, false
}
