// Package policy implements the read-only action gate: a wildcard
// allowlist of "service:Action" rules with a hard-coded mutation
// denylist that dominates it.
package policy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"awsquery/internal/normalize"
)

// mutationPrefixes can never be allowed, no matter what the ruleset
// says. The gate checks these defensively, before the ruleset match,
// so a permissive "*:*" rule in policy.json cannot open the door to a
// write call.
var mutationPrefixes = []string{
	"Create", "Put", "Delete", "Update", "Modify", "Reboot", "Start",
	"Stop", "Terminate", "Send", "Attach", "Detach", "Run", "Cancel",
	"Restore", "Reset",
}

// Rule is one "service:Action" entry from policy.json, with '*' meaning
// "any run of identifier characters" on either side of the colon.
type Rule struct {
	Service string
	Action  string
}

// Gate holds the parsed, immutable ruleset for one process invocation.
type Gate struct {
	rules []Rule
}

// Load reads the policy file located, in order, at $AWSQUERY_POLICY, a
// policy.json in the current directory, or a policy.json next to the
// running executable. A missing file is a fatal startup error, per the
// external interface contract.
func Load() (*Gate, error) {
	path, err := locate()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy file %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func locate() (string, error) {
	if p := os.Getenv("AWSQUERY_POLICY"); p != "" {
		return p, nil
	}
	if _, err := os.Stat("policy.json"); err == nil {
		return "policy.json", nil
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "policy.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no policy file found: set AWSQUERY_POLICY, or place policy.json in the current directory or next to the executable")
}

func parse(r io.Reader) (*Gate, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	g := &Gate{rules: make([]Rule, 0, len(raw))}
	for _, entry := range raw {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed policy rule %q: expected service:Action", entry)
		}
		g.rules = append(g.rules, Rule{Service: parts[0], Action: parts[1]})
	}
	return g, nil
}

// NewForTesting builds a Gate directly from in-memory rule strings,
// bypassing file lookup.
func NewForTesting(rules ...string) (*Gate, error) {
	g := &Gate{}
	for _, entry := range rules {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed policy rule %q: expected service:Action", entry)
		}
		g.rules = append(g.rules, Rule{Service: parts[0], Action: parts[1]})
	}
	return g, nil
}

// Allow reports whether (service, action) may be called. action should
// already be the catalog's canonical spelling; Allow still folds both
// sides before matching so callers that pass a raw CLI spelling work
// too.
func (g *Gate) Allow(service, action string) (bool, string) {
	if g == nil {
		return false, "no policy loaded"
	}
	if isMutation(action) {
		return false, "mutation verb"
	}
	serviceKey := normalize.Key(service)
	actionKey := normalize.Key(action)
	for _, r := range g.rules {
		if globMatch(normalize.Key(r.Service), serviceKey) && globMatch(normalize.Key(r.Action), actionKey) {
			return true, ""
		}
	}
	return false, "no matching allow rule"
}

func isMutation(action string) bool {
	key := normalize.Key(action)
	for _, p := range mutationPrefixes {
		if strings.HasPrefix(key, normalize.Key(p)) {
			return true
		}
	}
	return false
}

// globMatch matches s against pattern where '*' in pattern greedily
// matches any run of characters. Both arguments are expected to already
// be folded by normalize.Key.
func globMatch(pattern, s string) bool {
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, segments[0]) {
		return false
	}
	s = s[len(segments[0]):]
	for i := 1; i < len(segments)-1; i++ {
		idx := strings.Index(s, segments[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(segments[i]):]
	}
	last := segments[len(segments)-1]
	return strings.HasSuffix(s, last)
}
