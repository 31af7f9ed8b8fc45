package testutil

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	s := Sine(1000, 48000, 0.5, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	if math.Abs(s[12]-0.5) > 1e-15 {
		t.Fatalf("s[12] = %v, want the 0.5 crest", s[12])
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := Noise(42, 0.25, 256)
	b := Noise(42, 0.25, 256)
	c := Noise(43, 0.25, 256)

	differs := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed differs at %d", i)
		}
		if a[i] < -0.25 || a[i] >= 0.25 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
		differs = differs || a[i] != c[i]
	}
	if !differs {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestImpulse(t *testing.T) {
	imp := Impulse(8, 3)
	for i, v := range imp {
		want := 0.0
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("imp[%d] = %v, want %v", i, v, want)
		}
	}

	for i, v := range Impulse(4, 10) {
		if v != 0 {
			t.Fatalf("out-of-range impulse: imp[%d] = %v", i, v)
		}
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	src := []float64{1, 2, 3}
	chans := Channels(src, 2)
	chans[0][0] = 9

	if chans[1][0] != 1 || src[0] != 1 {
		t.Fatalf("channels share storage: %v %v", chans, src)
	}
}

func TestLogSpace(t *testing.T) {
	got := LogSpace(20, 20000, 4)
	want := []float64{20, 200, 2000, 20000}
	RequireSliceNearlyEqual(t, got, want, 1e-9)

	if one := LogSpace(5, 10, 1); len(one) != 1 || one[0] != 5 {
		t.Fatalf("LogSpace(n=1) = %v", one)
	}
}
