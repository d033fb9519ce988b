package lattice

import "testing"

func TestSetFactAddContains(t *testing.T) {
	s := NewSetFact[int]()
	if !s.Add(1) {
		t.Fatal("first Add(1) should report a change")
	}
	if s.Add(1) {
		t.Fatal("second Add(1) should report no change")
	}
	if !s.Contains(1) || s.Contains(2) {
		t.Fatal("Contains mismatched membership")
	}
}

func TestUnionInto(t *testing.T) {
	a := NewSetFact[int]()
	a.Add(1)
	a.Add(2)
	b := NewSetFact[int]()
	b.Add(2)
	b.Add(3)

	if !UnionInto(a, b) {
		t.Fatal("UnionInto should report a change")
	}
	for _, v := range []int{1, 2, 3} {
		if !b.Contains(v) {
			t.Errorf("union missing %d", v)
		}
	}
	if UnionInto(a, b) {
		t.Fatal("second UnionInto should report no change")
	}
}

func TestSetFactEqual(t *testing.T) {
	a := NewSetFact[int]()
	a.Add(1)
	b := NewSetFact[int]()
	b.Add(1)
	if !a.Equal(b) {
		t.Fatal("sets with same elements should be equal")
	}
	b.Add(2)
	if a.Equal(b) {
		t.Fatal("sets with different elements should not be equal")
	}
}
