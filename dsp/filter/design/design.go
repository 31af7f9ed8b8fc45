package design

import (
	"math"

	"github.com/cwbudde/matrixfilter/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// rbj holds the intermediate terms shared by every cookbook formula.
type rbj struct {
	cw, sw, alpha float64
}

func newRBJ(freq, q, sampleRate float64) (rbj, bool) {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return rbj{}, false
	}

	sw := math.Sin(w0)

	return rbj{cw: math.Cos(w0), sw: sw, alpha: sw / (2 * normalizedQ(q))}, true
}

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	b1 := 1 - r.cw

	return normalizeBiquad(b1/2, b1, b1/2, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	b1 := 1 + r.cw

	return normalizeBiquad(b1/2, -b1, b1/2, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// Bandpass designs a bandpass biquad with 0 dB gain at the center
// frequency. q sets the bandwidth.
func Bandpass(freq, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return normalizeBiquad(r.alpha, 0, -r.alpha, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// BandpassSkirt designs a constant-skirt-gain bandpass biquad whose peak
// gain equals q.
func BandpassSkirt(freq, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return normalizeBiquad(r.sw/2, 0, -r.sw/2, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// Notch designs a notch biquad centered at freq (Hz).
func Notch(freq, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return normalizeBiquad(1, -2*r.cw, 1, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// Peak designs a peaking-EQ biquad with gain in dB.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := math.Pow(10, gainDB/40)

	b0 := 1 + r.alpha*a
	b1 := -2 * r.cw
	b2 := 1 - r.alpha*a
	a0 := 1 + r.alpha/a
	a1 := -2 * r.cw
	a2 := 1 - r.alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB. q shapes the
// transition; 1/sqrt(2) gives the steepest slope without overshoot.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * r.alpha
	cw := r.cw

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	r, ok := newRBJ(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * r.alpha
	cw := r.cw

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
