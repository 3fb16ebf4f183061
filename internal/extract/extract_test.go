package extract

import (
	"testing"

	"awsquery/internal/flatten"
)

func newRecord(t *testing.T, pairs ...any) *flatten.Record {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatal("newRecord requires an even number of arguments")
	}
	return flatten.NewRecordForTesting(pairs...)
}

func TestFieldsExactPath(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "Cluster.Name", "prod", "Cluster.Status", "ACTIVE"),
	}
	got := Fields(records, "Cluster.Name", "")
	if len(got) != 1 || got[0] != "prod" {
		t.Errorf("Fields(exact path) = %v, want [prod]", got)
	}
}

func TestFieldsExactLastSegment(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "Cluster.Name", "prod"),
	}
	got := Fields(records, "Name", "")
	if len(got) != 1 || got[0] != "prod" {
		t.Errorf("Fields(last segment) = %v, want [prod]", got)
	}
}

func TestFieldsSubstringLastSegment(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "ClusterName", "prod"),
	}
	got := Fields(records, "clus", "")
	if len(got) != 1 || got[0] != "prod" {
		t.Errorf("Fields(substring) = %v, want [prod]", got)
	}
}

func TestFieldsStandardFallback(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "ClusterName", "prod", "ClusterArn", "arn:1"),
	}
	got := Fields(records, "", "ListClusters")
	if len(got) != 1 || got[0] != "prod" {
		t.Errorf("Fields(fallback) = %v, want [prod]", got)
	}
}

func TestFieldsFallbackPrefersBareNameOverEntityName(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "Name", "bare-name", "ClusterName", "entity-name"),
	}
	got := Fields(records, "", "ListClusters")
	if len(got) != 1 || got[0] != "bare-name" {
		t.Errorf("Fields(fallback) = %v, want [bare-name]", got)
	}
}

func TestFieldsDeduplicatesPreservingOrder(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "Name", "a"),
		newRecord(t, "Name", "b"),
		newRecord(t, "Name", "a"),
	}
	got := Fields(records, "Name", "")
	want := []any{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fields[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFieldsNoMatchReturnsNil(t *testing.T) {
	records := []*flatten.Record{
		newRecord(t, "Foo", "bar"),
	}
	if got := Fields(records, "", ""); got != nil {
		t.Errorf("Fields(no hint, no sourceOp) = %v, want nil", got)
	}
}

func TestEntityName(t *testing.T) {
	tests := []struct {
		op   string
		want string
	}{
		{"ListClusters", "Cluster"},
		{"DescribeLogGroups", "LogGroup"},
		{"ListBuckets", "Bucket"},
		{"GetPolicies", "Policy"},
		{"ListBatches", "Batch"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			if got := EntityName(tt.op); got != tt.want {
				t.Errorf("EntityName(%q) = %q, want %q", tt.op, got, tt.want)
			}
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Clusters", "Cluster"},
		{"Policies", "Policy"},
		{"Batches", "Batch"},
		{"Addresses", "Address"},
		{"Boxes", "Box"},
		{"Class", "Class"},
		{"Data", "Data"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Singularize(tt.in); got != tt.want {
				t.Errorf("Singularize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
