// Package flatten implements the Response Flattener: it turns an
// arbitrarily nested response tree (see internal/jsontree) into an
// ordered sequence of records, each a dotted-path-to-scalar map
// suitable for filtering and tabular rendering.
package flatten

import (
	"strconv"
	"strings"

	"awsquery/internal/jsontree"
)

// Record is one flattened row: a dotted path (e.g. "State.Name",
// "Tags.0.Value") mapped to a scalar value, in discovery order.
type Record struct {
	keys   []string
	values map[string]any
}

func newRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// NewRecordForTesting builds a Record directly from alternating key/value
// arguments, for tests in other packages that need a Record without going
// through Flatten itself.
func NewRecordForTesting(pairs ...any) *Record {
	rec := newRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Set(pairs[i].(string), pairs[i+1])
	}
	return rec
}

// Set appends key to the key order on first use.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value at key and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns this record's dotted paths in discovery order.
func (r *Record) Keys() []string {
	return r.keys
}

// isMetadataKey excludes well-known pagination/response-envelope keys
// from primary-list candidacy (4.C rule 1).
func isMetadataKey(key string) bool {
	switch key {
	case "ResponseMetadata", "NextToken", "Marker", "IsTruncated", "nextToken", "PaginationToken":
		return true
	}
	return strings.HasSuffix(key, "Token")
}

// Flatten implements 4.C in full: locate the primary list (or fall
// back to a single record for the whole root), then depth-first-walk
// each element into a Record.
func Flatten(tree any) []*Record {
	root, ok := tree.(*jsontree.Map)
	if !ok || root == nil {
		if tree == nil {
			return nil
		}
		// A bare scalar or list at the root: treat as one record (scalar)
		// or one record per element (list), matching rule 1's fallback.
		if list, ok := tree.([]any); ok {
			return flattenElements(list)
		}
		rec := newRecord()
		walkInto(rec, "value", tree)
		return []*Record{rec}
	}

	listKey, list, found := LocatePrimaryList(root)
	if !found {
		rec := newRecord()
		for _, k := range root.Keys() {
			v, _ := root.Get(k)
			walkInto(rec, k, v)
		}
		return []*Record{rec}
	}
	_ = listKey
	return flattenElements(list)
}

// LocatePrimaryList finds the unique non-metadata child of root whose
// value is a list of objects (or a list of scalars, by rule 2's
// mixed-type-wrapping allowance). If zero or more than one candidate
// exists, found is false and the caller treats root as a single
// record. Exported so the Invoker can apply the same rule when merging
// paginated responses (4.F: "merge pages by concatenating their
// primary lists").
func LocatePrimaryList(root *jsontree.Map) (string, []any, bool) {
	candidateKey := ""
	var candidateList []any
	count := 0
	for _, k := range root.Keys() {
		if isMetadataKey(k) {
			continue
		}
		v, _ := root.Get(k)
		if list, ok := v.([]any); ok {
			candidateKey = k
			candidateList = list
			count++
		}
	}
	if count != 1 {
		return "", nil, false
	}
	return candidateKey, candidateList, true
}

// flattenElements turns a primary list into one record per element,
// wrapping bare scalar elements as {value: x} per rule 2's mixed-type
// note.
func flattenElements(list []any) []*Record {
	records := make([]*Record, 0, len(list))
	for _, elem := range list {
		rec := newRecord()
		switch v := elem.(type) {
		case *jsontree.Map:
			for _, k := range v.Keys() {
				val, _ := v.Get(k)
				walkInto(rec, k, val)
			}
		case []any:
			walkInto(rec, "value", v)
		default:
			rec.Set("value", v)
		}
		records = append(records, rec)
	}
	return records
}

// walkInto depth-first-walks value under the dotted path prefix,
// writing leaves into rec in discovery order (rule 2, rule 3).
func walkInto(rec *Record, prefix string, value any) {
	switch v := value.(type) {
	case *jsontree.Map:
		if v.Len() == 0 {
			return
		}
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			walkInto(rec, prefix+"."+k, child)
		}
	case []any:
		for i, elem := range v {
			walkInto(rec, prefix+"."+strconv.Itoa(i), elem)
		}
	default:
		rec.Set(prefix, v)
	}
}
