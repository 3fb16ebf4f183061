// Package awserr defines the error kinds used throughout the resolver
// pipeline and their mapping to process exit codes.
package awserr

import (
	"errors"
	"fmt"
)

// ExitCode is the process exit code an error kind maps to.
type ExitCode int

const (
	ExitOK                    ExitCode = 0
	ExitOther                 ExitCode = 1
	ExitPolicyDenied          ExitCode = 2
	ExitUnresolvableParameter ExitCode = 3
	ExitSDKError              ExitCode = 4
	ExitInterrupted           ExitCode = 130
)

// PolicyDeniedError reports that a service:action pair was rejected by
// the policy gate, either for lacking an allow rule or for matching the
// mutation denylist.
type PolicyDeniedError struct {
	Service string
	Action  string
	Reason  string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("policy denied %s:%s (%s)", e.Service, e.Action, e.Reason)
}

// UnresolvableParameterError reports that the resolver exhausted its
// candidates for a required field.
type UnresolvableParameterError struct {
	Service string
	Action  string
	Field   string
	Reason  string
}

func (e *UnresolvableParameterError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot resolve required parameter %q for %s:%s (%s)", e.Field, e.Service, e.Action, e.Reason)
	}
	return fmt.Sprintf("cannot resolve required parameter %q for %s:%s", e.Field, e.Service, e.Action)
}

// SDKError wraps a transport or API rejection from a concrete call.
type SDKError struct {
	Service string
	Action  string
	Code    string
	Err     error
}

func (e *SDKError) Error() string {
	return fmt.Sprintf("%s:%s failed (%s): %v", e.Service, e.Action, e.Code, e.Err)
}

func (e *SDKError) Unwrap() error { return e.Err }

// UnknownEntityError reports a catalog miss: an unrecognized service or
// action name.
type UnknownEntityError struct {
	Service string
	Action  string // empty when the service itself is unknown
}

func (e *UnknownEntityError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("unknown service %q", e.Service)
	}
	return fmt.Sprintf("unknown action %q for service %q", e.Action, e.Service)
}

// BadArgumentError reports a CLI parse failure.
type BadArgumentError struct {
	Msg string
}

func (e *BadArgumentError) Error() string { return e.Msg }

// ExitCodeFor maps an error produced anywhere in the pipeline to the
// process exit code the CLI should return. It unwraps with errors.As so
// a wrapped sentinel (fmt.Errorf("...: %w", err)) still resolves to the
// right code. Unrecognized errors map to ExitOther.
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var policyErr *PolicyDeniedError
	var unresolvableErr *UnresolvableParameterError
	var sdkErr *SDKError
	var unknownErr *UnknownEntityError
	switch {
	case errors.As(err, &policyErr):
		return ExitPolicyDenied
	case errors.As(err, &unresolvableErr):
		return ExitUnresolvableParameter
	case errors.As(err, &sdkErr), errors.As(err, &unknownErr):
		return ExitSDKError
	default:
		return ExitOther
	}
}
