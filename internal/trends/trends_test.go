package trends

import "testing"

func TestTopOrdersByScore(t *testing.T) {
	s := NewStatic()
	got := s.Keywords(0)
	want := []string{"AI investment", "health insurance", "cryptocurrency guide"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keywords = %v, want %v", got, want)
		}
	}
	if top := s.Top(1); len(top) != 1 || top[0].RevenuePotential != 8500 {
		t.Fatalf("top = %+v", top)
	}
}
