package lattice

import "testing"

func TestMeet(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Value
		want   Value
	}{
		{"undef undef", UndefVal, UndefVal, UndefVal},
		{"undef const", UndefVal, NewConst(3), NewConst(3)},
		{"const undef", NewConst(3), UndefVal, NewConst(3)},
		{"const const equal", NewConst(3), NewConst(3), NewConst(3)},
		{"const const unequal", NewConst(3), NewConst(4), NACVal},
		{"nac anything", NACVal, NewConst(3), NACVal},
		{"anything nac", UndefVal, NACVal, NACVal},
		{"nac nac", NACVal, NACVal, NACVal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Meet(tt.a, tt.b); !got.Equal(tt.want) {
				t.Errorf("Meet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	if !NewConst(5).Equal(NewConst(5)) {
		t.Error("CONST(5) should equal CONST(5)")
	}
	if NewConst(5).Equal(NewConst(6)) {
		t.Error("CONST(5) should not equal CONST(6)")
	}
	if UndefVal.Equal(NACVal) {
		t.Error("UNDEF should not equal NAC")
	}
}

func TestConstValuePanicsOnNonConst(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ConstValue on UNDEF should panic")
		}
	}()
	UndefVal.ConstValue()
}
