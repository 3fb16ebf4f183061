// Package invoker implements the Invoker (spec component F): it binds a
// parameter map onto a live SDK client call via reflection, follows
// pagination tokens until exhausted or capped, and merges pages into a
// single response tree.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"awsquery/internal/awserr"
	"awsquery/internal/flatten"
	"awsquery/internal/jsontree"
)

// DefaultPageCap bounds how many pages one call follows (4.F: "a safety
// page-cap (default 50 pages)").
const DefaultPageCap = 50

// paginationTokenFields are the response field names that signal more
// pages remain, in the order AWS services most commonly use them.
var paginationTokenFields = []string{
	"NextToken",
	"NextMarker",
	"Marker",
	"NextContinuationToken",
	"ContinuationToken",
	"NextPageToken",
	"NextPageMarker",
}

// requestFieldOverride maps a response token field to the request field
// name that carries it into the next page, for the services where the
// two differ.
var requestFieldOverride = map[string]string{
	"NextContinuationToken": "ContinuationToken",
	"LastEvaluatedKey":      "ExclusiveStartKey",
}

// serviceSpecificTokenFields are extra pagination fields only certain
// services use, checked after the default list.
var serviceSpecificTokenFields = map[string][]string{
	"dynamodb": {"LastEvaluatedKey"},
}

// Registry is the subset of awsclient.Registry the Invoker needs: a
// live client per service.
type Registry interface {
	ClientFor(service string) (any, bool)
}

// Invoker executes operations against live clients. It never consults
// --dry-run itself; the caller decides whether to call Invoke at all
// for the top-level target call (4.F, 4.H: dry-run only ever skips the
// final call, never the resolver's own source-operation calls).
type Invoker struct {
	Registry Registry
	PageCap  int
}

func (iv *Invoker) pageCap() int {
	if iv.PageCap <= 0 {
		return DefaultPageCap
	}
	return iv.PageCap
}

// Invoke implements resolver.Caller and is also the sole place a
// concrete SDK operation is dispatched. It pages until exhausted,
// merges pages, and returns the merged response as a jsontree value.
func (iv *Invoker) Invoke(ctx context.Context, service, action string, params map[string]any) (any, error) {
	client, ok := iv.Registry.ClientFor(service)
	if !ok {
		return nil, &awserr.UnknownEntityError{Service: service}
	}
	method := reflect.ValueOf(client).MethodByName(action)
	if !method.IsValid() {
		return nil, &awserr.UnknownEntityError{Service: service, Action: action}
	}
	inputType := method.Type().In(1)

	var pages []*jsontree.Map
	current := cloneParams(params)
	for page := 0; page < iv.pageCap(); page++ {
		inputVal, err := bindInput(inputType, current)
		if err != nil {
			return nil, &awserr.SDKError{Service: service, Action: action, Err: fmt.Errorf("bind input: %w", err)}
		}
		results := method.Call([]reflect.Value{reflect.ValueOf(ctx), inputVal})
		if errVal := results[1].Interface(); errVal != nil {
			sdkErr := errVal.(error)
			return nil, &awserr.SDKError{Service: service, Action: action, Err: sdkErr}
		}
		tree, err := jsontree.FromGo(results[0].Interface())
		if err != nil {
			return nil, &awserr.SDKError{Service: service, Action: action, Err: err}
		}
		root, ok := tree.(*jsontree.Map)
		if !ok {
			return tree, nil
		}
		pages = append(pages, root)

		nextField, nextValue := findPaginationToken(root, service)
		if nextField == "" {
			break
		}
		current = cloneParams(current)
		current[nextField] = nextValue
	}

	return mergePages(pages), nil
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// bindInput marshals params to JSON and unmarshals it into a new
// zero-valued instance of the operation's *XInput type. The round trip
// through encoding/json is deliberate: it is the only place a concrete
// input struct type is named, matching the polymorphic-response design
// note's spirit for the request side too.
func bindInput(inputType reflect.Type, params map[string]any) (reflect.Value, error) {
	elemType := inputType
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	data, err := json.Marshal(params)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(elemType)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr, nil
}

// findPaginationToken reports the request field name and value to use
// for the next page, or "" if the response carries no further-page
// indicator.
func findPaginationToken(root *jsontree.Map, service string) (string, any) {
	fields := paginationTokenFields
	if extra, ok := serviceSpecificTokenFields[service]; ok {
		fields = append(append([]string{}, fields...), extra...)
	}
	for _, field := range fields {
		v, ok := root.Get(field)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		reqField := field
		if override, ok := requestFieldOverride[field]; ok {
			reqField = override
		}
		return reqField, v
	}
	return "", nil
}

// mergePages implements 4.F's merge rule: concatenate the primary
// lists, last-write-wins on scalar siblings.
func mergePages(pages []*jsontree.Map) any {
	if len(pages) == 0 {
		return jsontree.NewMap()
	}
	if len(pages) == 1 {
		return pages[0]
	}

	merged := jsontree.NewMap()
	for _, k := range pages[0].Keys() {
		v, _ := pages[0].Get(k)
		merged.Set(k, v)
	}
	listKey, list, hasList := flatten.LocatePrimaryList(pages[0])

	for i := 1; i < len(pages); i++ {
		p := pages[i]
		for _, k := range p.Keys() {
			v, _ := p.Get(k)
			if hasList && k == listKey {
				if pl, ok := v.([]any); ok {
					list = append(list, pl...)
				}
				continue
			}
			merged.Set(k, v)
		}
	}
	if hasList {
		merged.Set(listKey, list)
	}
	return merged
}
