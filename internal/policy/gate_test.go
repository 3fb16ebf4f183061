package policy

import "testing"

func TestAllowWildcard(t *testing.T) {
	gate, err := NewForTesting("ec2:Describe*", "eks:List*")
	if err != nil {
		t.Fatalf("NewForTesting failed: %v", err)
	}

	tests := []struct {
		name    string
		service string
		action  string
		want    bool
	}{
		{"matches wildcard", "ec2", "DescribeInstances", true},
		{"matches second rule", "eks", "ListClusters", true},
		{"no matching rule", "ec2", "ListInstances", false},
		{"wrong service", "rds", "DescribeInstances", false},
		{"case and separator insensitive", "EC2", "describe-instances", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := gate.Allow(tt.service, tt.action)
			if got != tt.want {
				t.Errorf("Allow(%q, %q) = %v, want %v", tt.service, tt.action, got, tt.want)
			}
		})
	}
}

func TestAllowMutationDenylistDominates(t *testing.T) {
	gate, err := NewForTesting("*:*")
	if err != nil {
		t.Fatalf("NewForTesting failed: %v", err)
	}

	mutations := []string{
		"CreateCluster", "PutObject", "DeleteBucket", "UpdateFunctionCode",
		"ModifyInstanceAttribute", "RebootInstances", "StartInstances",
		"StopInstances", "TerminateInstances", "SendCommand", "AttachVolume",
		"DetachVolume", "RunInstances", "CancelExportTask", "RestoreDBInstance",
		"ResetImageAttribute",
	}
	for _, action := range mutations {
		t.Run(action, func(t *testing.T) {
			if allowed, reason := gate.Allow("ec2", action); allowed {
				t.Errorf("Allow(ec2, %q) = true, want false (reason: %q)", action, reason)
			}
		})
	}
}

func TestAllowReadOnlyStillAllowedUnderWildcardAll(t *testing.T) {
	gate, err := NewForTesting("*:*")
	if err != nil {
		t.Fatalf("NewForTesting failed: %v", err)
	}
	if allowed, reason := gate.Allow("ec2", "DescribeInstances"); !allowed {
		t.Errorf("Allow(ec2, DescribeInstances) = false (%s), want true", reason)
	}
}

func TestAllowNilGate(t *testing.T) {
	var gate *Gate
	if allowed, _ := gate.Allow("ec2", "DescribeInstances"); allowed {
		t.Errorf("Allow on nil gate = true, want false")
	}
}

func TestNewForTestingMalformedRule(t *testing.T) {
	if _, err := NewForTesting("not-a-rule"); err == nil {
		t.Error("expected error for malformed rule, got nil")
	}
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"*", "anything", true},
		{"describe*", "describeinstances", true},
		{"describe*", "listinstances", false},
		{"*instances", "describeinstances", true},
		{"list*clusters", "listecsclusters", true},
		{"exact", "exact", true},
		{"exact", "notexact", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			if got := globMatch(tt.pattern, tt.s); got != tt.want {
				t.Errorf("globMatch(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
			}
		})
	}
}
