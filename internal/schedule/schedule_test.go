package schedule

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestController_RampCycle(t *testing.T) {
	c, err := New(ModeRamp, 3, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := make([]int, 12)
	for i := range got {
		got[i] = c.Next()
	}

	// Ramp ignores the [3,5] bounds and covers the full range.
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 0, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ramp sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestController_RandomBounds(t *testing.T) {
	c, err := New(ModeRandom, 2, 5, rand.New(rand.NewPCG(7, 11)))
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int]int)
	for i := 0; i < 10000; i++ {
		v := c.Next()
		if v < 2 || v > 5 {
			t.Fatalf("value %d outside [2,5]", v)
		}
		seen[v]++
	}
	for v := 2; v <= 5; v++ {
		if seen[v] == 0 {
			t.Errorf("value %d never drawn", v)
		}
	}
}

func TestController_RandomSinglePoint(t *testing.T) {
	c, err := New(ModeRandom, 7, 7, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		if v := c.Next(); v != 7 {
			t.Fatalf("expected 7, got %d", v)
		}
	}
	if c.Current() != 7 {
		t.Errorf("expected current 7, got %d", c.Current())
	}
}

func TestNew_RejectsInvalidBounds(t *testing.T) {
	cases := []struct{ min, max int }{{-1, 5}, {0, 11}, {6, 5}}
	for _, tc := range cases {
		if _, err := New(ModeRandom, tc.min, tc.max, nil); err == nil {
			t.Errorf("expected error for [%d,%d]", tc.min, tc.max)
		}
	}
	if _, err := New(Mode("spiral"), 0, 10, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"random": ModeRandom, "1": ModeRandom, "RAMP": ModeRamp, " 0 ": ModeRamp}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseMode("2"); err == nil {
		t.Error("expected error for unknown selector")
	}
}
