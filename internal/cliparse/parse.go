// Package cliparse parses the dynamic command line the CLI frontend
// accepts: "[global-flags] SERVICE ACTION [filter-tokens]* [--
// column-tokens]*". It is hand-written rather than left to pflag
// because the grammar's repeated "--" separator (up to two of them,
// see spec design note 9.a) has meaning pflag's own "-- ends flag
// parsing" convention would swallow.
package cliparse

import (
	"fmt"
	"strconv"
	"strings"

	"awsquery/internal/awserr"
	"awsquery/internal/resolver"
)

// Command is the fully parsed invocation.
type Command struct {
	Service string
	Action  string

	// ResourceFilter is only populated when three "--"-delimited
	// segments are present (9.a): a name-filter applied to the
	// resolver's source listing, independent of ValueFilters/
	// ColumnFilters on the final output.
	ResourceFilter []string
	ValueFilters   []string
	ColumnFilters  []string

	DryRun  bool
	JSON    bool
	Keys    bool
	Debug   bool
	Region  string
	Profile string

	// ListOps, when set, short-circuits the whole dispatch into the
	// "awsquery SERVICE --list-operations" introspection wrapper over
	// component B; no ACTION is required or consumed in this mode.
	ListOps bool
	// Describe, when set, short-circuits into the "awsquery SERVICE
	// ACTION --describe" introspection wrapper: prints the
	// OperationShape without calling AWS.
	Describe bool

	// UserParams holds -p KEY=VALUE, accumulated into a list per key.
	UserParams map[string][]string
	Hints      []resolver.Hint
}

// Parse parses args (os.Args[1:], or a subcommand's own args). Flags
// are recognized anywhere before the first bare "--" that follows
// SERVICE and ACTION, so "-p"/"-i" may also come after ACTION; other
// tokens after ACTION are value filters. From that "--" on, everything
// is the positional filter/column stream, where a bare "--" is always
// a segment separator.
func Parse(args []string) (*Command, error) {
	cmd := &Command{UserParams: map[string][]string{}}

	var positional []string
	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" && cmd.Service != "" && (cmd.Action != "" || cmd.ListOps) {
			break
		}
		switch {
		case arg == "--dry-run":
			cmd.DryRun = true
		case arg == "-j" || arg == "--json":
			cmd.JSON = true
		case arg == "-k" || arg == "--keys":
			cmd.Keys = true
		case arg == "-d" || arg == "--debug":
			cmd.Debug = true
		case arg == "--list-operations":
			cmd.ListOps = true
		case arg == "--region":
			i++
			if i >= len(args) {
				return nil, &awserr.BadArgumentError{Msg: "--region requires a value"}
			}
			cmd.Region = args[i]
		case arg == "--profile":
			i++
			if i >= len(args) {
				return nil, &awserr.BadArgumentError{Msg: "--profile requires a value"}
			}
			cmd.Profile = args[i]
		case arg == "-p":
			i++
			if i >= len(args) {
				return nil, &awserr.BadArgumentError{Msg: "-p requires KEY=VALUE"}
			}
			if err := addUserParam(cmd, args[i]); err != nil {
				return nil, err
			}
		case arg == "-i":
			i++
			if i >= len(args) {
				return nil, &awserr.BadArgumentError{Msg: "-i requires SRC:FIELD:LIMIT"}
			}
			hint, err := parseHint(args[i])
			if err != nil {
				return nil, err
			}
			cmd.Hints = append(cmd.Hints, hint)
		case arg == "--describe":
			cmd.Describe = true
		case strings.HasPrefix(arg, "-") && arg != "--":
			return nil, &awserr.BadArgumentError{Msg: fmt.Sprintf("unknown flag %q", arg)}
		default:
			switch {
			case cmd.Service == "":
				cmd.Service = arg
			case cmd.Action == "" && !cmd.ListOps:
				cmd.Action = arg
			default:
				positional = append(positional, arg)
			}
		}
		i++
	}
	if cmd.Service == "" {
		return nil, &awserr.BadArgumentError{Msg: "expected SERVICE"}
	}
	if !cmd.ListOps && cmd.Action == "" {
		return nil, &awserr.BadArgumentError{Msg: "expected SERVICE and ACTION"}
	}
	if cmd.ListOps {
		return cmd, nil
	}

	positional = append(positional, args[i:]...)
	positional, describe := extractDescribeFlag(positional)
	cmd.Describe = cmd.Describe || describe
	segments := splitSegments(positional)
	switch len(segments) {
	case 1:
		cmd.ValueFilters = segments[0]
	case 2:
		cmd.ValueFilters = segments[0]
		cmd.ColumnFilters = segments[1]
	case 3:
		cmd.ResourceFilter = segments[0]
		cmd.ValueFilters = segments[1]
		cmd.ColumnFilters = segments[2]
	default:
		return nil, &awserr.BadArgumentError{Msg: "at most two '--' separators are allowed"}
	}
	return cmd, nil
}

// extractDescribeFlag reports whether "--describe" appears anywhere in
// the positional filter/column stream (the "SERVICE ACTION --describe"
// introspection wrapper has no fixed position of its own, unlike the
// "--" segment separators) and returns the stream with it removed.
func extractDescribeFlag(tokens []string) ([]string, bool) {
	for idx, tok := range tokens {
		if tok == "--describe" {
			out := make([]string, 0, len(tokens)-1)
			out = append(out, tokens[:idx]...)
			out = append(out, tokens[idx+1:]...)
			return out, true
		}
	}
	return tokens, false
}

func splitSegments(tokens []string) [][]string {
	segments := [][]string{{}}
	for _, tok := range tokens {
		if tok == "--" {
			segments = append(segments, []string{})
			continue
		}
		last := len(segments) - 1
		segments[last] = append(segments[last], tok)
	}
	return segments
}

func addUserParam(cmd *Command, raw string) error {
	idx := strings.Index(raw, "=")
	if idx < 0 {
		return &awserr.BadArgumentError{Msg: fmt.Sprintf("malformed -p value %q: expected KEY=VALUE", raw)}
	}
	key, value := raw[:idx], raw[idx+1:]
	cmd.UserParams[key] = append(cmd.UserParams[key], value)
	return nil
}

func parseHint(raw string) (resolver.Hint, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return resolver.Hint{}, &awserr.BadArgumentError{Msg: fmt.Sprintf("malformed -i value %q: expected source:field:limit", raw)}
	}
	hint := resolver.Hint{SourceHint: parts[0], FieldHint: parts[1]}
	if parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return resolver.Hint{}, &awserr.BadArgumentError{Msg: fmt.Sprintf("malformed -i limit %q: must be an integer", parts[2])}
		}
		hint.Limit = n
	}
	return hint, nil
}
