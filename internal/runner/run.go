// Package runner wires the Policy Gate, Service Catalog Adapter,
// Parameter Resolver, Invoker, Filter & Projection Engine, and renderer
// into the single pipeline the CLI frontend drives: H -> A -> E -> F ->
// C -> G -> render.
package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"

	"awsquery/internal/awsclient"
	"awsquery/internal/awserr"
	"awsquery/internal/catalog"
	"awsquery/internal/cliparse"
	"awsquery/internal/filter"
	"awsquery/internal/flatten"
	"awsquery/internal/invoker"
	"awsquery/internal/policy"
	"awsquery/internal/render"
	"awsquery/internal/resolver"
)

// Env bundles the collaborators one invocation needs. Passed in
// explicitly rather than held as package-level globals, per the
// "avoid ambient singletons" design note. Registry is the narrow
// invoker.Registry interface rather than the concrete *awsclient.Registry
// so tests can exercise this package's pipeline with a stub client
// registry instead of a live SDK config.
type Env struct {
	Catalog  catalog.Catalog
	Gate     *policy.Gate
	Registry invoker.Registry
	Stdout   io.Writer
	Stderr   io.Writer
}

// Run executes one parsed command end to end and returns the process
// exit code.
func Run(ctx context.Context, env *Env, cmd *cliparse.Command) int {
	if cmd.ListOps {
		return runListOperations(env, cmd.Service)
	}

	action, err := env.Catalog.NormalizeAction(cmd.Service, cmd.Action)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}

	if cmd.Describe {
		return runDescribe(env, cmd.Service, action)
	}

	if allowed, reason := env.Gate.Allow(cmd.Service, action); !allowed {
		err := &awserr.PolicyDeniedError{Service: cmd.Service, Action: action, Reason: reason}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}

	inv := &invoker.Invoker{Registry: env.Registry}
	res := &resolver.Resolver{Catalog: env.Catalog, Gate: env.Gate, Caller: inv}

	userParams := make(map[string]any, len(cmd.UserParams))
	shape, err := env.Catalog.Describe(cmd.Service, action)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}
	kindOf := make(map[string]catalog.FieldKind, len(shape.Inputs))
	for _, f := range shape.Inputs {
		kindOf[f.Name] = f.Kind
	}
	for key, values := range cmd.UserParams {
		if kindOf[key] == catalog.KindList || len(values) > 1 {
			anyValues := make([]any, len(values))
			for i, v := range values {
				anyValues[i] = v
			}
			userParams[key] = anyValues
		} else {
			userParams[key] = values[0]
		}
	}

	target := resolver.Target{
		Service: cmd.Service, Action: action, UserParams: userParams,
		Hints: cmd.Hints, ResourceFilter: cmd.ResourceFilter,
	}
	resolved, err := res.Resolve(ctx, target)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}

	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].SortKey < resolved[j].SortKey })

	if cmd.DryRun {
		for _, call := range resolved {
			fmt.Fprintf(env.Stdout, "%s %s %v\n", cmd.Service, action, call.Params)
		}
		return int(awserr.ExitOK)
	}

	// resolved is already sorted by SortKey, so the fanned-out calls can
	// run concurrently (spec 5: bounded degree, default 8) and still be
	// concatenated back in order.
	type callResult struct {
		records []*flatten.Record
		err     error
	}
	results := awsclient.Call(len(resolved), resolver.DefaultConcurrency, func(i int) callResult {
		tree, err := inv.Invoke(ctx, cmd.Service, action, resolved[i].Params)
		if err != nil {
			return callResult{err: err}
		}
		return callResult{records: flatten.Flatten(tree)}
	})

	var allRecords []*flatten.Record
	for _, out := range results {
		if out.err != nil {
			// 4.F / 7: a single fanned-out call's SDK failure is
			// reported and does not abort the others.
			fmt.Fprintf(env.Stderr, "error: %v\n", out.err)
			continue
		}
		allRecords = append(allRecords, out.records...)
	}

	allRecords = filter.ApplyValueFilters(allRecords, cmd.ValueFilters)

	if cmd.Keys {
		render.Keys(env.Stdout, allRecords)
		return int(awserr.ExitOK)
	}

	columns, warnings := filter.Columns(allRecords, cmd.ColumnFilters)
	if cmd.Debug {
		for _, w := range warnings {
			log.SetOutput(env.Stderr)
			log.Printf("[DEBUG] %s", w)
		}
	}

	if cmd.JSON {
		// filter.Columns falls back to the table-default heuristic
		// when no column tokens were given; JSON mode only projects
		// when the user actually asked for columns (4.G: "applying
		// column projection if column filters are present"), so the
		// default heuristic must not leak into JSON output.
		jsonColumns := columns
		if len(cmd.ColumnFilters) == 0 {
			jsonColumns = nil
		}
		if err := render.JSON(env.Stdout, allRecords, jsonColumns); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return int(awserr.ExitOther)
		}
		return int(awserr.ExitOK)
	}

	render.Table(env.Stdout, allRecords, columns)
	return int(awserr.ExitOK)
}

// runListOperations implements the "awsquery SERVICE --list-operations"
// introspection wrapper: a thin, policy-gated read of component B's
// operation list, no AWS call issued.
func runListOperations(env *Env, service string) int {
	ops, err := env.Catalog.ListOperations(service)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}
	sort.Strings(ops)
	for _, op := range ops {
		if allowed, _ := env.Gate.Allow(service, op); allowed {
			fmt.Fprintln(env.Stdout, op)
		}
	}
	return int(awserr.ExitOK)
}

// runDescribe implements the "awsquery SERVICE ACTION --describe"
// introspection wrapper: a direct read of component B's OperationShape,
// no AWS call issued.
func runDescribe(env *Env, service, action string) int {
	shape, err := env.Catalog.Describe(service, action)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return int(awserr.ExitCodeFor(err))
	}
	fmt.Fprintf(env.Stdout, "%s %s\n", service, action)
	for _, f := range shape.Inputs {
		fmt.Fprintf(env.Stdout, "  %s required=%v kind=%s\n", f.Name, f.Required, f.Kind)
	}
	if shape.OutputListKey != "" {
		fmt.Fprintf(env.Stdout, "  output: %s\n", shape.OutputListKey)
	}
	return int(awserr.ExitOK)
}
