// Package normalize folds the three action spellings the CLI accepts
// (kebab-case, snake_case, and the SDK's CamelCase) down to a single
// comparison key, and renders a display-friendly title form for
// messages.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var foldCaser = cases.Fold()

// Key strips '-' and '_' separators and Unicode case-folds the rest,
// so "describe-instances", "describe_instances", and "DescribeInstances"
// all produce the same key. golang.org/x/text/cases is used instead of
// strings.ToLower so the fold stays correct for non-ASCII service or
// action names.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return foldCaser.String(b.String())
}

var titleCaser = cases.Title(language.Und)

// Title renders s with each run of letters title-cased, used only for
// human-readable messages (never for comparisons, which go through Key).
func Title(s string) string {
	return titleCaser.String(s)
}
