// Package resolver implements the Parameter Resolver, the heart of the
// system (spec component E): given a target operation with unsatisfied
// required parameters, it picks a source operation, calls it
// (recursively through itself), and harvests values for each missing
// parameter, producing the cartesian product of parameter maps the
// Invoker must fan out over.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"awsquery/internal/awsclient"
	"awsquery/internal/awserr"
	"awsquery/internal/catalog"
	"awsquery/internal/extract"
	"awsquery/internal/filter"
	"awsquery/internal/flatten"
	"awsquery/internal/normalize"
	"awsquery/internal/policy"
)

// DefaultCeiling is the safety ceiling on cartesian fan-out (9. design
// notes: "configurable; when exceeded, abort ... citing the explosive
// field rather than silently truncating").
const DefaultCeiling = 100

// DefaultConcurrency bounds how many source-operation calls the
// resolver issues at once (spec 5: "bounded degree (default 8)").
const DefaultConcurrency = 8

// Hint is a parsed -i SRC:FIELD:LIMIT triple (spec 3, ResolutionHint).
type Hint struct {
	SourceHint string
	FieldHint  string
	Limit      int // 0 means unbounded (the fan-out ceiling still applies)
}

// Target is one request to resolve: an operation plus whatever the user
// already supplied.
type Target struct {
	Service    string
	Action     string
	UserParams map[string]any
	// Hints apply positionally to successive unresolved required
	// fields in shape-declared order, per 4.H ("-i ... one hint per
	// unresolved parameter, in declaration order"), not by field name.
	Hints []Hint
	// ResourceFilter is the rare third "--"-delimited segment (9.a): a
	// name-filter applied to the resolver's own source-operation
	// listing, before values are harvested from it.
	ResourceFilter []string
}

// Resolved is one concrete parameter map ready for invocation, carrying
// the value(s) that were harvested for it so the runner can sort
// fanned-out results deterministically (spec 5).
type Resolved struct {
	Params  map[string]any
	SortKey string
}

// Caller executes one concrete operation and returns its response tree.
// The resolver depends on this interface, not on the invoker package
// directly, so recursive source-operation calls and the top-level
// target call share one execution path without an import cycle.
type Caller interface {
	Invoke(ctx context.Context, service, action string, params map[string]any) (any, error)
}

// Resolver ties the catalog, policy gate, and caller together. Degree
// and Ceiling default to DefaultConcurrency/DefaultCeiling when zero.
type Resolver struct {
	Catalog catalog.Catalog
	Gate    *policy.Gate
	Caller  Caller
	Degree  int
	Ceiling int
}

func (r *Resolver) degree() int {
	if r.Degree <= 0 {
		return DefaultConcurrency
	}
	return r.Degree
}

func (r *Resolver) ceiling() int {
	if r.Ceiling <= 0 {
		return DefaultCeiling
	}
	return r.Ceiling
}

// Resolve implements 4.E steps 1-6.
func (r *Resolver) Resolve(ctx context.Context, target Target) ([]Resolved, error) {
	shape, err := r.Catalog.Describe(target.Service, target.Action)
	if err != nil {
		return nil, &awserr.UnknownEntityError{Service: target.Service, Action: target.Action}
	}

	working := make(map[string]any, len(target.UserParams))
	for k, v := range target.UserParams {
		working[k] = v
	}

	var missing []catalog.InputField
	for _, f := range shape.Inputs {
		if !f.Required {
			continue
		}
		if _, ok := working[f.Name]; ok {
			continue
		}
		missing = append(missing, f)
	}

	if len(missing) == 0 {
		return []Resolved{{Params: working}}, nil
	}

	// harvestedPerField[i] holds the ordered values resolved for
	// missing[i].
	harvestedPerField := make([][]any, len(missing))
	for i, field := range missing {
		hint := Hint{}
		if i < len(target.Hints) {
			hint = target.Hints[i]
		}
		values, err := r.harvestForField(ctx, target.Service, field, hint, target.ResourceFilter)
		if err != nil {
			return nil, err
		}
		harvestedPerField[i] = values
	}

	combos, err := cartesian(harvestedPerField, missing, r.ceiling())
	if err != nil {
		return nil, err
	}

	resolved := make([]Resolved, 0, len(combos))
	for _, combo := range combos {
		params := make(map[string]any, len(working)+len(missing))
		for k, v := range working {
			params[k] = v
		}
		var keyParts []string
		for i, field := range missing {
			params[field.Name] = combo[i]
			keyParts = append(keyParts, fmt.Sprintf("%v", combo[i]))
		}
		resolved = append(resolved, Resolved{Params: params, SortKey: strings.Join(keyParts, "\x00")})
	}
	return resolved, nil
}

// harvestForField performs 4.E steps 2-4 for a single missing field:
// pick a source operation, resolve and invoke it, and extract values.
func (r *Resolver) harvestForField(ctx context.Context, service string, field catalog.InputField, hint Hint, resourceFilter []string) ([]any, error) {
	candidate, err := r.pickSourceOperation(service, field, hint)
	if err != nil {
		return nil, err
	}

	subResolved, err := r.Resolve(ctx, Target{Service: service, Action: candidate})
	if err != nil {
		return nil, err
	}

	// Source-operation calls are independent of each other, so they fan
	// out up to the bounded degree (spec 5) instead of running one at a
	// time.
	type harvestResult struct {
		values []any
	}
	results := awsclient.Call(len(subResolved), r.degree(), func(i int) harvestResult {
		tree, err := r.Caller.Invoke(ctx, service, candidate, subResolved[i].Params)
		if err != nil {
			// A single fan-out source call failing at the SDK layer is
			// not fatal: it is skipped and harvesting continues from the
			// other resolved source calls. The error is not reported.
			return harvestResult{}
		}
		records := flatten.Flatten(tree)
		if len(resourceFilter) > 0 {
			records = filter.ApplyValueFilters(records, resourceFilter)
		}
		return harvestResult{values: extract.Fields(records, hint.FieldHint, candidate)}
	})

	var all []any
	seen := make(map[any]bool)
	for _, res := range results {
		for _, v := range res.values {
			if !seen[v] {
				seen[v] = true
				all = append(all, v)
			}
		}
	}

	// Only the hint's own limit truncates; a value count above the
	// ceiling is left for cartesian to reject, naming this field.
	if hint.Limit > 0 && len(all) > hint.Limit {
		all = all[:hint.Limit]
	}
	if len(all) == 0 {
		return nil, &awserr.UnresolvableParameterError{
			Service: service, Action: candidate, Field: field.Name,
			Reason: "source operation returned no usable values",
		}
	}
	return all, nil
}

// pickSourceOperation implements 4.E step 2: with a source hint, any
// operation whose normalized name contains it; otherwise any
// parameter-free List*/Describe* operation, ranked by entity-name
// containment, then shorter name, then lexicographic. Every candidate
// is policy-checked before acceptance (step 6); a denied candidate is
// skipped, not just the first one tried.
func (r *Resolver) pickSourceOperation(service string, field catalog.InputField, hint Hint) (string, error) {
	ops, err := r.Catalog.ListOperations(service)
	if err != nil {
		return "", &awserr.UnknownEntityError{Service: service}
	}

	var candidates []string
	if hint.SourceHint != "" {
		needle := normalize.Key(hint.SourceHint)
		for _, op := range ops {
			if strings.Contains(normalize.Key(op), needle) {
				candidates = append(candidates, op)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if len(candidates[i]) != len(candidates[j]) {
				return len(candidates[i]) < len(candidates[j])
			}
			return candidates[i] < candidates[j]
		})
	} else {
		entity := strings.ToLower(entityFromField(field.Name))
		for _, op := range ops {
			if !strings.HasPrefix(op, "List") && !strings.HasPrefix(op, "Describe") {
				continue
			}
			shape, err := r.Catalog.Describe(service, op)
			if err != nil {
				continue
			}
			if hasRequired(shape) {
				continue
			}
			candidates = append(candidates, op)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			ci, cj := strings.Contains(strings.ToLower(candidates[i]), entity), strings.Contains(strings.ToLower(candidates[j]), entity)
			if ci != cj {
				return ci
			}
			if len(candidates[i]) != len(candidates[j]) {
				return len(candidates[i]) < len(candidates[j])
			}
			return candidates[i] < candidates[j]
		})
	}

	for _, c := range candidates {
		allowed, _ := r.Gate.Allow(service, c)
		if allowed {
			return c, nil
		}
	}
	return "", &awserr.UnresolvableParameterError{
		Service: service, Field: field.Name,
		Reason: "no candidate source operation found",
	}
}

func hasRequired(shape catalog.OperationShape) bool {
	for _, f := range shape.Inputs {
		if f.Required {
			return true
		}
	}
	return false
}

// entityFromField derives the entity name a source operation should
// mention from a required input field name, e.g. "ClusterName" ->
// "Cluster", "NodegroupName" -> "Nodegroup".
func entityFromField(name string) string {
	for _, suffix := range []string{"Name", "Id", "Arn"} {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return extract.Singularize(name[:len(name)-len(suffix)])
		}
	}
	return extract.Singularize(name)
}

// cartesian computes the cross-product of per-field value lists,
// bounded by ceiling; exceeding it fails naming the explosive field
// (the first field whose own value count alone already exceeds the
// ceiling, or whose multiplication pushed the product over it).
func cartesian(valuesPerField [][]any, fields []catalog.InputField, ceiling int) ([][]any, error) {
	total := 1
	for i, values := range valuesPerField {
		total *= len(values)
		if total > ceiling {
			return nil, &awserr.UnresolvableParameterError{
				Field:  fields[i].Name,
				Reason: fmt.Sprintf("cartesian fan-out exceeds safety ceiling of %d", ceiling),
			}
		}
	}
	combos := [][]any{{}}
	for _, values := range valuesPerField {
		var next [][]any
		for _, combo := range combos {
			for _, v := range values {
				extended := make([]any, len(combo)+1)
				copy(extended, combo)
				extended[len(combo)] = v
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos, nil
}
