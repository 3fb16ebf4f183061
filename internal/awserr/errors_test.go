package awserr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitOK},
		{"policy denied", &PolicyDeniedError{Service: "ec2", Action: "TerminateInstances"}, ExitPolicyDenied},
		{"unresolvable parameter", &UnresolvableParameterError{Field: "ClusterName"}, ExitUnresolvableParameter},
		{"sdk error", &SDKError{Service: "ec2", Action: "DescribeInstances", Err: errors.New("boom")}, ExitSDKError},
		{"unknown entity", &UnknownEntityError{Service: "bogus"}, ExitSDKError},
		{"bad argument", &BadArgumentError{Msg: "nope"}, ExitOther},
		{"plain error", errors.New("whatever"), ExitOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForWrappedError(t *testing.T) {
	inner := &PolicyDeniedError{Service: "ec2", Action: "RunInstances", Reason: "mutation verb"}
	wrapped := fmt.Errorf("running command: %w", inner)
	if got := ExitCodeFor(wrapped); got != ExitPolicyDenied {
		t.Errorf("ExitCodeFor(wrapped) = %v, want %v", got, ExitPolicyDenied)
	}
}

func TestSDKErrorUnwrap(t *testing.T) {
	inner := errors.New("timeout")
	sdkErr := &SDKError{Service: "s3", Action: "ListBuckets", Err: inner}
	if !errors.Is(sdkErr, inner) {
		t.Errorf("errors.Is(sdkErr, inner) = false, want true")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"policy denied", &PolicyDeniedError{Service: "ec2", Action: "RunInstances", Reason: "mutation verb"},
			"policy denied ec2:RunInstances (mutation verb)"},
		{"unresolvable with reason", &UnresolvableParameterError{Service: "eks", Action: "DescribeNodegroup", Field: "ClusterName", Reason: "no candidate source operation found"},
			`cannot resolve required parameter "ClusterName" for eks:DescribeNodegroup (no candidate source operation found)`},
		{"unresolvable without reason", &UnresolvableParameterError{Service: "eks", Action: "DescribeNodegroup", Field: "ClusterName"},
			`cannot resolve required parameter "ClusterName" for eks:DescribeNodegroup`},
		{"unknown service", &UnknownEntityError{Service: "bogus"}, `unknown service "bogus"`},
		{"unknown action", &UnknownEntityError{Service: "ec2", Action: "Bogus"}, `unknown action "Bogus" for service "ec2"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
