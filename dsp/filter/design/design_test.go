package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/matrixfilter/dsp/filter/biquad"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestLowpass_QuarterSampleRateKnownValues(t *testing.T) {
	// At fs/4, cos(w0) = 0 and sin(w0) = 1, so with q = 1/sqrt(2):
	// alpha = 1/sqrt(2), a0 = 1 + alpha.
	c := Lowpass(12000, defaultQ, 48000)
	a0 := 1 + 1/math.Sqrt2

	want := biquad.Coefficients{
		B0: 0.5 / a0,
		B1: 1 / a0,
		B2: 0.5 / a0,
		A1: 0,
		A2: (1 - 1/math.Sqrt2) / a0,
	}

	for i, pair := range [][2]float64{
		{c.B0, want.B0}, {c.B1, want.B1}, {c.B2, want.B2}, {c.A1, want.A1}, {c.A2, want.A2},
	} {
		if !almostEqual(pair[0], pair[1], 1e-12) {
			t.Fatalf("coef[%d] = %.15f, want %.15f", i, pair[0], pair[1])
		}
	}
}

func TestBiquadDesigners_BasicResponseShape(t *testing.T) {
	sr := 48000.0
	f := 1000.0
	q := defaultQ

	lp := Lowpass(f, q, sr)
	if !almostEqual(mag(lp, 0, sr), 1, 1e-9) {
		t.Fatalf("lowpass DC gain = %v, want 1", mag(lp, 0, sr))
	}
	if !(mag(lp, 100, sr) > mag(lp, 10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}

	hp := Highpass(f, q, sr)
	if !almostEqual(mag(hp, sr/2, sr), 1, 1e-9) {
		t.Fatalf("highpass Nyquist gain = %v, want 1", mag(hp, sr/2, sr))
	}
	if !(mag(hp, 10000, sr) > mag(hp, 100, sr)) {
		t.Fatal("highpass shape check failed")
	}

	n := Notch(f, q, sr)
	if mag(n, f, sr) > 1e-9 {
		t.Fatalf("notch center gain = %v, want 0", mag(n, f, sr))
	}
	if !(mag(n, 100, sr) > 0.9 && mag(n, 10000, sr) > 0.9) {
		t.Fatal("notch shape check failed")
	}
}

func TestBandpass_UnityAtCenter(t *testing.T) {
	sr := 48000.0
	for _, q := range []float64{0.1, 0.707, 2, 10} {
		bp := Bandpass(1000, q, sr)
		if got := mag(bp, 1000, sr); !almostEqual(got, 1, 1e-9) {
			t.Fatalf("q=%v: center gain = %v, want 1", q, got)
		}
		if !(mag(bp, 1000, sr) > mag(bp, 100, sr) && mag(bp, 1000, sr) > mag(bp, 10000, sr)) {
			t.Fatalf("q=%v: bandpass shape check failed", q)
		}
	}
}

func TestBandpassSkirt_PeakEqualsQ(t *testing.T) {
	sr := 48000.0
	for _, q := range []float64{0.5, 2, 5} {
		bp := BandpassSkirt(1000, q, sr)
		if got := mag(bp, 1000, sr); !almostEqual(got, q, 1e-9) {
			t.Fatalf("q=%v: center gain = %v, want %v", q, got, q)
		}
	}
}

func TestEQDesigners_GainAtReferencePoints(t *testing.T) {
	sr := 48000.0

	tests := []struct {
		name   string
		c      biquad.Coefficients
		freq   float64
		wantDB float64
	}{
		{name: "peak boost at center", c: Peak(1000, 6, 1, sr), freq: 1000, wantDB: 6},
		{name: "peak cut at center", c: Peak(1000, -12, 2, sr), freq: 1000, wantDB: -12},
		{name: "peak zero gain", c: Peak(1000, 0, 2, sr), freq: 3000, wantDB: 0},
		{name: "low shelf DC", c: LowShelf(500, 6, defaultQ, sr), freq: 0, wantDB: 6},
		{name: "low shelf Nyquist", c: LowShelf(500, 6, defaultQ, sr), freq: sr / 2, wantDB: 0},
		{name: "high shelf DC", c: HighShelf(4000, -9, defaultQ, sr), freq: 0, wantDB: 0},
		{name: "high shelf Nyquist", c: HighShelf(4000, -9, defaultQ, sr), freq: sr / 2, wantDB: -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.MagnitudeDB(tt.freq, sr); !almostEqual(got, tt.wantDB, 1e-6) {
				t.Fatalf("gain at %v Hz = %.9f dB, want %.9f dB", tt.freq, got, tt.wantDB)
			}
		})
	}
}

func TestDesigners_ValidateAcrossSampleRates(t *testing.T) {
	for _, sr := range []float64{22050, 44100, 48000, 96000, 192000} {
		for _, c := range []biquad.Coefficients{
			Lowpass(1000, 0.707, sr),
			Highpass(1000, 0.707, sr),
			Bandpass(1000, 1.2, sr),
			BandpassSkirt(1000, 1.2, sr),
			Notch(1000, 1.2, sr),
			Peak(1000, 3, 1.0, sr),
			LowShelf(300, 6, 1.0, sr),
			HighShelf(3000, -6, 1.0, sr),
			Lowpass(sr/2*0.999, 10, sr),
			HighShelf(sr/2*0.999, 24, 10, sr),
		} {
			assertFiniteCoefficients(t, c)
			assertStableSection(t, c)
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	if got := Lowpass(1000, 0.707, 0); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for invalid sample rate, got %#v", got)
	}
	if got := Highpass(0, 0.707, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for invalid frequency, got %#v", got)
	}
	if got := Peak(24000, 3, 1, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients at Nyquist, got %#v", got)
	}
	if got := Notch(math.NaN(), 1, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for NaN frequency, got %#v", got)
	}

	if Bandpass(1000, 0, 48000) != Bandpass(1000, defaultQ, 48000) {
		t.Fatal("q<=0 should fall back to defaultQ")
	}
	if Notch(1000, math.Inf(1), 48000) != Notch(1000, defaultQ, 48000) {
		t.Fatal("infinite q should fall back to defaultQ")
	}
	assertFiniteCoefficients(t, LowShelf(1000, 3, -1, 48000))
	assertFiniteCoefficients(t, HighShelf(1000, 3, 0, 48000))
}

func mag(c biquad.Coefficients, freq, sr float64) float64 {
	return cmplx.Abs(c.Response(freq, sr))
}

func assertFiniteCoefficients(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	v := []float64{c.B0, c.B1, c.B2, c.A1, c.A2}
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			t.Fatalf("invalid coefficient[%d]=%v", i, v[i])
		}
	}
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	r := c.Poles()
	if cmplx.Abs(r[0]) >= 1+tol || cmplx.Abs(r[1]) >= 1+tol {
		t.Fatalf("unstable poles: |r1|=%v |r2|=%v coeff=%#v", cmplx.Abs(r[0]), cmplx.Abs(r[1]), c)
	}
}
