package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMagnitudeSquared_MatchesResponse(t *testing.T) {
	sr := 48000.0

	for _, freq := range []float64{100, 500, 1000, 5000, 10000, 20000} {
		h := refCoeffs.Response(freq, sr)
		fromResponse := real(h)*real(h) + imag(h)*imag(h)
		fromClosed := refCoeffs.MagnitudeSquared(freq, sr)
		if !almostEqual(fromClosed, fromResponse, 1e-10) {
			t.Errorf("freq=%v: MagnitudeSquared=%.15f, |Response|²=%.15f", freq, fromClosed, fromResponse)
		}
	}
}

func TestMagnitudeDB_MatchesMagnitudeSquared(t *testing.T) {
	sr := 48000.0

	for _, freq := range []float64{100, 1000, 10000} {
		db := refCoeffs.MagnitudeDB(freq, sr)
		fromSq := 10 * math.Log10(refCoeffs.MagnitudeSquared(freq, sr))
		if !almostEqual(db, fromSq, 1e-12) {
			t.Errorf("freq=%v: MagnitudeDB=%.15f, 10*log10(MagSq)=%.15f", freq, db, fromSq)
		}
	}
}

func TestPhase_MatchesResponse(t *testing.T) {
	sr := 48000.0

	for _, freq := range []float64{100, 500, 1000, 5000, 10000} {
		fromResponse := cmplx.Phase(refCoeffs.Response(freq, sr))
		if got := refCoeffs.Phase(freq, sr); !almostEqual(got, fromResponse, 1e-10) {
			t.Errorf("freq=%v: Phase=%.15f, arg(Response)=%.15f", freq, got, fromResponse)
		}
	}
}

func TestResponse_Passthrough(t *testing.T) {
	c := Identity()
	sr := 48000.0
	for _, freq := range []float64{0, 100, 1000, 10000, 24000} {
		if mag := cmplx.Abs(c.Response(freq, sr)); !almostEqual(mag, 1, 1e-12) {
			t.Errorf("freq=%v: |H|=%v, want 1", freq, mag)
		}
	}
}

func TestResponse_Allpass(t *testing.T) {
	a1, a2 := -0.5, 0.3
	c := Coefficients{B0: a2, B1: a1, B2: 1, A1: a1, A2: a2}
	sr := 48000.0
	for _, freq := range []float64{100, 500, 1000, 5000, 10000, 20000} {
		if mag := cmplx.Abs(c.Response(freq, sr)); !almostEqual(mag, 1, 1e-10) {
			t.Errorf("freq=%v: |H|=%.15f, want 1", freq, mag)
		}
	}
}

func TestSection_ImpulseResponse(t *testing.T) {
	s := NewSection(refCoeffs)

	s.ProcessSample(0.5)
	s.ProcessSample(0.3)
	saved := s.History()

	ir := s.ImpulseResponse(8)

	if s.History() != saved {
		t.Fatal("ImpulseResponse modified section history")
	}

	ref := NewSection(refCoeffs)
	for i, want := range ir {
		var x float64
		if i == 0 {
			x = 1
		}
		if got := ref.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Errorf("ir[%d]: got %.15f, want %.15f", i, got, want)
		}
	}
}

func TestSection_ImpulseResponse_Zero(t *testing.T) {
	s := NewSection(Identity())
	if ir := s.ImpulseResponse(0); ir != nil {
		t.Errorf("ImpulseResponse(0) should return nil, got %v", ir)
	}
	if ir := s.ImpulseResponse(-1); ir != nil {
		t.Errorf("ImpulseResponse(-1) should return nil, got %v", ir)
	}
}
