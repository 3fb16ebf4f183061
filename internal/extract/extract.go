// Package extract implements the Field Extractor: given a set of
// flattened records and a (possibly fuzzy) field hint, it returns the
// scalar values of that field across every record, trying progressively
// looser match rules until one produces results.
package extract

import (
	"strings"

	"awsquery/internal/flatten"
)

// Fields returns the scalar values matching hint across records, per
// 4.D's four-tier priority. It stops at the first tier that produces a
// non-empty result. sourceOp is the name of the operation that
// produced records, used only by tier 4's entity-name fallback; pass ""
// if unknown (tier 4 then tries the bare Name/Id/Arn fallbacks only).
func Fields(records []*flatten.Record, hint string, sourceOp string) []any {
	if hint != "" {
		if vals := exactPath(records, hint); len(vals) > 0 {
			return vals
		}
		if vals := exactLastSegment(records, hint); len(vals) > 0 {
			return vals
		}
		if vals := substringLastSegment(records, hint); len(vals) > 0 {
			return vals
		}
	}
	return standardFallbacks(records, sourceOp)
}

func exactPath(records []*flatten.Record, hint string) []any {
	return collect(records, func(key string) bool { return key == hint })
}

func exactLastSegment(records []*flatten.Record, hint string) []any {
	return collect(records, func(key string) bool { return lastSegment(key) == hint })
}

func substringLastSegment(records []*flatten.Record, hint string) []any {
	needle := strings.ToLower(hint)
	return collect(records, func(key string) bool {
		return strings.Contains(strings.ToLower(lastSegment(key)), needle)
	})
}

// standardFallbacks tries Name, Id, Arn, then <Entity>Name, <Entity>Id,
// <Entity>Arn in order, where Entity is inferred from sourceOp.
func standardFallbacks(records []*flatten.Record, sourceOp string) []any {
	candidates := []string{"Name", "Id", "Arn"}
	if entity := EntityName(sourceOp); entity != "" {
		candidates = append(candidates, entity+"Name", entity+"Id", entity+"Arn")
	}
	for _, c := range candidates {
		if vals := exactLastSegment(records, c); len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// collect walks records in order, keeping the first matching key from
// each record (matching is applied per record, not per key, so a
// record with multiple matching keys only contributes its first), then
// de-duplicates preserving first occurrence and drops nulls.
func collect(records []*flatten.Record, match func(key string) bool) []any {
	var out []any
	seen := make(map[any]bool)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if !match(key) {
				continue
			}
			val, _ := rec.Get(key)
			if val == nil {
				break
			}
			if !seen[val] {
				seen[val] = true
				out = append(out, val)
			}
			break
		}
	}
	return out
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// EntityName infers an AWS entity name from an operation name by
// stripping a leading List/Describe/Get and singularizing what
// remains, e.g. "ListClusters" -> "Cluster", "DescribeLogGroups" ->
// "LogGroup". Exported so the resolver's source-operation ranking
// (4.E.2.a) can derive the same entity name from a missing field.
func EntityName(opName string) string {
	for _, prefix := range []string{"List", "Describe", "Get"} {
		if strings.HasPrefix(opName, prefix) {
			opName = opName[len(prefix):]
			break
		}
	}
	return Singularize(opName)
}

// Singularize applies the common English plural-stripping rules AWS
// operation names follow; it is a heuristic, not a general inflector.
func Singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "ches"), strings.HasSuffix(s, "shes"),
		strings.HasSuffix(s, "xes"), strings.HasSuffix(s, "ses"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	default:
		return s
	}
}
