package result

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	s := NewSink()
	s.Put("cha", 42)

	v, ok := s.Get("cha")
	if !ok {
		t.Fatal("expected cha to be found")
	}
	if v.(int) != 42 {
		t.Errorf("Get(cha) = %v, want 42", v)
	}
}

func TestGetMissingIDNotFound(t *testing.T) {
	s := NewSink()
	if _, ok := s.Get("missing"); ok {
		t.Error("Get on an unset id should report not found")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := NewSink()
	s.Put("deadcode", 1)
	s.Put("deadcode", 2)

	v, _ := s.Get("deadcode")
	if v.(int) != 2 {
		t.Errorf("Put should overwrite a prior value, got %v", v)
	}
}

func TestIDsListsEveryStoredKey(t *testing.T) {
	s := NewSink()
	s.Put("cha", 1)
	s.Put("taint", 2)

	ids := s.IDs()
	if len(ids) != 2 {
		t.Fatalf("IDs() = %v, want 2 entries", ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["cha"] || !seen["taint"] {
		t.Errorf("IDs() = %v, want both cha and taint", ids)
	}
}
