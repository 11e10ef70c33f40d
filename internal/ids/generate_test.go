package ids

import "testing"

func TestGenerate(t *testing.T) {
	id := Generate("todo-123", 8)

	if len(id) != 8 {
		t.Fatalf("expected ID length 8, got %d: %q", len(id), id)
	}

	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= '2' && c <= '7')) {
			t.Errorf("ID contains invalid character %q: %q", c, id)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	id1 := Generate("todo-123", 10)
	id2 := Generate("todo-123", 10)

	if id1 != id2 {
		t.Errorf("same inputs should produce same ID: got %q and %q", id1, id2)
	}
}

func TestNewIsUniqueAndNeverNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := New()
		if len(id) != DefaultLength {
			t.Fatalf("expected ID length %d, got %q", DefaultLength, id)
		}
		if IsNewID(id) {
			t.Fatalf("persisted ID %q carries the new prefix", id)
		}
		if _, ok := ParseNewID(id); ok {
			t.Fatalf("persisted ID %q parsed as a new ID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}
