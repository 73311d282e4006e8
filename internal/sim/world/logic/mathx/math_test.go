package mathx

import "testing"

func TestDraw_RangeAndStability(t *testing.T) {
	for tick := uint64(0); tick < 200; tick++ {
		v := Draw(9, tick, 3, 6)
		if v < 0 || v >= 6 {
			t.Fatalf("draw out of range: %d", v)
		}
		if v != Draw(9, tick, 3, 6) {
			t.Fatalf("draw not stable at tick %d", tick)
		}
	}
	if Draw(9, 1, 1, 0) != 0 {
		t.Fatalf("empty range must draw 0")
	}
}

func TestClampInt(t *testing.T) {
	if ClampInt(-3, 0, 5) != 0 || ClampInt(9, 0, 5) != 5 || ClampInt(2, 0, 5) != 2 {
		t.Fatalf("clamp broken")
	}
}
