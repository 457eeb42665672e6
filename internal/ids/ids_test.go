package ids

import "testing"

func TestNewIsUnique(t *testing.T) {
	a := New()
	b := New()
	if a == "" || b == "" {
		t.Fatal("New() returned empty string")
	}
	if a == b {
		t.Fatalf("New() returned the same id twice: %s", a)
	}
}

func TestPartitionConstants(t *testing.T) {
	cases := []Partition{PartitionDomain, PartitionLexical, PartitionTemporal}
	seen := map[Partition]bool{}
	for _, p := range cases {
		if seen[p] {
			t.Fatalf("duplicate partition value %q", p)
		}
		seen[p] = true
	}
}
