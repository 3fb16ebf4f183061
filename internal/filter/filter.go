// Package filter implements the Filter & Projection Engine (spec
// component G): value-filters over records, fuzzy column selection and
// ordering, a default-column heuristic, and keys-mode path listing.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"awsquery/internal/flatten"
)

// ValueMatch reports whether every token is a case-insensitive
// substring of some scalar value in rec (4.G: "every token is ... a
// substring of some scalar value in that record").
func ValueMatch(rec *flatten.Record, tokens []string) bool {
	for _, tok := range tokens {
		needle := strings.ToLower(tok)
		found := false
		for _, key := range rec.Keys() {
			v, _ := rec.Get(key)
			if strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ApplyValueFilters keeps only the records matching every token.
func ApplyValueFilters(records []*flatten.Record, tokens []string) []*flatten.Record {
	if len(tokens) == 0 {
		return records
	}
	var out []*flatten.Record
	for _, rec := range records {
		if ValueMatch(rec, tokens) {
			out = append(out, rec)
		}
	}
	return out
}

// Columns resolves column-filter tokens (or, if none given, the
// default column heuristic) to an ordered list of dotted paths.
// Warnings names tokens that resolved to nothing (emitted by the
// caller only under --debug, per 4.G).
func Columns(records []*flatten.Record, tokens []string) (columns []string, warnings []string) {
	if len(tokens) == 0 {
		return defaultColumns(records), nil
	}
	for _, tok := range tokens {
		path, ok := resolveColumn(records, tok)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("column filter %q matched no field", tok))
			continue
		}
		columns = append(columns, path)
	}
	return columns, warnings
}

// resolveColumn applies the same three-tier priority as the Field
// Extractor (exact path, exact last segment, case-insensitive
// substring on last segment), returning the first matching path found.
func resolveColumn(records []*flatten.Record, token string) (string, bool) {
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if key == token {
				return key, true
			}
		}
	}
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if lastSegment(key) == token {
				return key, true
			}
		}
	}
	needle := strings.ToLower(token)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if strings.Contains(strings.ToLower(lastSegment(key)), needle) {
				return key, true
			}
		}
	}
	return "", false
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// preferredSuffixes ranks matching paths ahead of all other eligible
// paths in the default column heuristic, in this order; record
// coverage beyond the threshold does not affect the order.
var preferredSuffixes = []string{"Name", "Id", "Arn", "State", "Status"}

// defaultColumns implements 4.G's "no column filters given" rule: the
// first <=6 scalar paths appearing in >=50% of records, preferring
// paths ending in Name/Id/Arn/State*/Status*.
func defaultColumns(records []*flatten.Record) []string {
	if len(records) == 0 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			counts[key]++
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}

	threshold := (len(records) + 1) / 2 // >= 50%
	var eligible []string
	for _, key := range order {
		if counts[key] >= threshold {
			eligible = append(eligible, key)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		pi, pj := preferenceRank(eligible[i]), preferenceRank(eligible[j])
		if pi != pj {
			return pi < pj
		}
		return false // preserve discovery order within the same rank
	})

	if len(eligible) > 6 {
		eligible = eligible[:6]
	}
	return eligible
}

func preferenceRank(path string) int {
	last := lastSegment(path)
	for i, suffix := range preferredSuffixes {
		// Name/Id/Arn match as suffixes; State/Status as prefixes (State*, Status*).
		matched := strings.HasSuffix(last, suffix)
		if suffix == "State" || suffix == "Status" {
			matched = strings.HasPrefix(last, suffix)
		}
		if matched {
			return i
		}
	}
	return len(preferredSuffixes)
}

// KeysUnion returns the sorted union of every dotted path across
// records, for --keys mode.
func KeysUnion(records []*flatten.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Project extracts columns from each record, in column order, for
// table or JSON rendering. A missing value renders as "".
func Project(records []*flatten.Record, columns []string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := rec.Get(col)
			if ok && v != nil {
				row[i] = fmt.Sprintf("%v", v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
