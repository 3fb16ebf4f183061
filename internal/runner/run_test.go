package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"awsquery/internal/awserr"
	"awsquery/internal/catalog"
	"awsquery/internal/cliparse"
	"awsquery/internal/policy"
)

// fakeCatalog is a minimal catalog.Catalog for exercising the H -> A ->
// E -> F -> C -> G -> render pipeline without a live SDK config.
type fakeCatalog struct {
	shapes map[string]map[string]catalog.OperationShape
}

func (f *fakeCatalog) ListServices() []string { return nil }

func (f *fakeCatalog) ListOperations(service string) ([]string, error) {
	shapes, ok := f.shapes[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}
	var names []string
	for name := range shapes {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeCatalog) Describe(service, action string) (catalog.OperationShape, error) {
	shapes, ok := f.shapes[service]
	if !ok {
		return catalog.OperationShape{}, fmt.Errorf("unknown service %q", service)
	}
	shape, ok := shapes[action]
	if !ok {
		return catalog.OperationShape{}, fmt.Errorf("unknown action %q", action)
	}
	shape.Action = action
	return shape, nil
}

func (f *fakeCatalog) NormalizeAction(service, action string) (string, error) {
	shape, err := f.Describe(service, action)
	if err != nil {
		return "", err
	}
	return shape.Action, nil
}

// fakeRegistry satisfies invoker.Registry with an in-memory client map.
type fakeRegistry struct {
	clients map[string]any
}

func (f *fakeRegistry) ClientFor(service string) (any, bool) {
	c, ok := f.clients[service]
	return c, ok
}

type describeWidgetsInput struct{}

type widget struct {
	Name   string
	Id     string
	Arn    string
	State  string
	Status string
	Extra1 string
	Extra2 string
}

type describeWidgetsOutput struct {
	Widgets []widget
}

// widgetsClient serves a single record with seven scalar fields, one
// more than the table-default's six-column cap, so a test can tell
// whether JSON output without column tokens was truncated to the
// table-default heuristic or carried every field through.
type widgetsClient struct{}

func (c *widgetsClient) DescribeWidgets(ctx context.Context, in *describeWidgetsInput) (*describeWidgetsOutput, error) {
	return &describeWidgetsOutput{Widgets: []widget{{
		Name: "prod", Id: "w-1", Arn: "arn:aws:widgets:1:w-1",
		State: "ACTIVE", Status: "OK", Extra1: "e1", Extra2: "e2",
	}}}, nil
}

func mustGate(t *testing.T, rules ...string) *policy.Gate {
	t.Helper()
	gate, err := policy.NewForTesting(rules...)
	if err != nil {
		t.Fatalf("NewForTesting failed: %v", err)
	}
	return gate
}

func TestRunDryRunPrintsCallsWithoutInvokingSDK(t *testing.T) {
	cat := &fakeCatalog{shapes: map[string]map[string]catalog.OperationShape{
		"widgets": {"DescribeWidget": {Inputs: []catalog.InputField{
			{Name: "WidgetName", Required: true, Kind: catalog.KindScalar},
		}}},
	}}
	var stdout, stderr bytes.Buffer
	// Registry is left nil: the dry-run path (spec 4.F, 4.H) must never
	// reach the invoker, so a nil invoker.Registry would panic if it did.
	env := &Env{Catalog: cat, Gate: mustGate(t, "widgets:*"), Stdout: &stdout, Stderr: &stderr}

	cmd := &cliparse.Command{
		Service: "widgets", Action: "DescribeWidget", DryRun: true,
		UserParams: map[string][]string{"WidgetName": {"w1"}},
	}
	code := Run(context.Background(), env, cmd)
	if code != int(awserr.ExitOK) {
		t.Fatalf("Run returned exit %d, want %d; stderr=%s", code, awserr.ExitOK, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "widgets DescribeWidget") {
		t.Errorf("dry-run output = %q, want it to name the service and action", out)
	}
	if !strings.Contains(out, "WidgetName:w1") {
		t.Errorf("dry-run output = %q, want it to show the resolved parameter map", out)
	}
}

func TestRunJSONWithoutColumnFiltersIncludesAllFields(t *testing.T) {
	cat := &fakeCatalog{shapes: map[string]map[string]catalog.OperationShape{
		"widgets": {"DescribeWidgets": {}},
	}}
	reg := &fakeRegistry{clients: map[string]any{"widgets": &widgetsClient{}}}
	var stdout, stderr bytes.Buffer
	env := &Env{Catalog: cat, Gate: mustGate(t, "widgets:*"), Registry: reg, Stdout: &stdout, Stderr: &stderr}

	cmd := &cliparse.Command{
		Service: "widgets", Action: "DescribeWidgets", JSON: true,
		UserParams: map[string][]string{},
	}
	code := Run(context.Background(), env, cmd)
	if code != int(awserr.ExitOK) {
		t.Fatalf("Run returned exit %d, want %d; stderr=%s", code, awserr.ExitOK, stderr.String())
	}

	var docs []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &docs); err != nil {
		t.Fatalf("unmarshal JSON output failed: %v; output=%s", err, stdout.String())
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	// Extra2 falls outside the table-default's six-column cap
	// (internal/filter.defaultColumns); its presence here proves Run
	// passed nil to render.JSON instead of the table-default column
	// set when no "--" column tokens were given (spec 4.G).
	if docs[0]["Extra2"] != "e2" {
		t.Errorf("docs[0] = %v, want Extra2 present (no column truncation without column filters)", docs[0])
	}
	if docs[0]["Name"] != "prod" {
		t.Errorf("docs[0][Name] = %v, want prod", docs[0]["Name"])
	}
}

func TestRunJSONWithColumnFiltersProjects(t *testing.T) {
	cat := &fakeCatalog{shapes: map[string]map[string]catalog.OperationShape{
		"widgets": {"DescribeWidgets": {}},
	}}
	reg := &fakeRegistry{clients: map[string]any{"widgets": &widgetsClient{}}}
	var stdout, stderr bytes.Buffer
	env := &Env{Catalog: cat, Gate: mustGate(t, "widgets:*"), Registry: reg, Stdout: &stdout, Stderr: &stderr}

	cmd := &cliparse.Command{
		Service: "widgets", Action: "DescribeWidgets", JSON: true,
		ColumnFilters: []string{"Name"},
		UserParams:    map[string][]string{},
	}
	code := Run(context.Background(), env, cmd)
	if code != int(awserr.ExitOK) {
		t.Fatalf("Run returned exit %d, want %d; stderr=%s", code, awserr.ExitOK, stderr.String())
	}

	var docs []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &docs); err != nil {
		t.Fatalf("unmarshal JSON output failed: %v; output=%s", err, stdout.String())
	}
	if _, ok := docs[0]["Extra2"]; ok {
		t.Errorf("docs[0] = %v, want Extra2 projected away by the explicit column filter", docs[0])
	}
	if docs[0]["Name"] != "prod" {
		t.Errorf("docs[0][Name] = %v, want prod", docs[0]["Name"])
	}
}

func TestRunListOperationsPrintsPolicyGatedOperations(t *testing.T) {
	cat := &fakeCatalog{shapes: map[string]map[string]catalog.OperationShape{
		"widgets": {
			"ListWidgets":    {},
			"DeleteWidget":   {},
			"DescribeWidget": {},
		},
	}}
	var stdout, stderr bytes.Buffer
	env := &Env{Catalog: cat, Gate: mustGate(t, "widgets:List*", "widgets:Describe*"), Stdout: &stdout, Stderr: &stderr}

	cmd := &cliparse.Command{Service: "widgets", ListOps: true}
	code := Run(context.Background(), env, cmd)
	if code != int(awserr.ExitOK) {
		t.Fatalf("Run returned exit %d, want %d; stderr=%s", code, awserr.ExitOK, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "ListWidgets") || !strings.Contains(out, "DescribeWidget") {
		t.Errorf("--list-operations output = %q, want it to include the allowed operations", out)
	}
	if strings.Contains(out, "DeleteWidget") {
		t.Errorf("--list-operations output = %q, want the mutation-denied operation excluded", out)
	}
}

func TestRunDescribePrintsShapeWithoutCallingSDK(t *testing.T) {
	cat := &fakeCatalog{shapes: map[string]map[string]catalog.OperationShape{
		"widgets": {"DescribeWidget": {Inputs: []catalog.InputField{
			{Name: "WidgetName", Required: true, Kind: catalog.KindScalar},
		}, OutputListKey: "Widgets"}},
	}}
	var stdout, stderr bytes.Buffer
	// Registry stays nil: --describe never reaches the invoker.
	env := &Env{Catalog: cat, Gate: mustGate(t, "widgets:*"), Stdout: &stdout, Stderr: &stderr}

	cmd := &cliparse.Command{Service: "widgets", Action: "DescribeWidget", Describe: true}
	code := Run(context.Background(), env, cmd)
	if code != int(awserr.ExitOK) {
		t.Fatalf("Run returned exit %d, want %d; stderr=%s", code, awserr.ExitOK, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "WidgetName") || !strings.Contains(out, "required=true") {
		t.Errorf("--describe output = %q, want it to show WidgetName as required", out)
	}
}
