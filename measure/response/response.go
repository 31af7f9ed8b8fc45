package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/matrixfilter/dsp/core"
)

// ErrInvalidConfig is returned for non-positive sample rates, lengths or
// probe frequencies outside (0, Nyquist).
var ErrInvalidConfig = errors.New("response: invalid config")

// minLength is the shortest impulse response Measure captures.
const minLength = 16

// Processor filters buf in-place, keeping its state between calls.
type Processor func(buf []float64)

// Response is the measured frequency response of a processor.
type Response struct {
	SampleRate float64
	// FFTSize is the captured impulse response length, a power of two.
	FFTSize int
	// Spectrum holds the non-negative frequency bins [0..FFTSize/2].
	Spectrum []complex128
	// Magnitude holds |Spectrum| per bin.
	Magnitude []float64
	// Impulse is the captured impulse response.
	Impulse []float64
}

// Measure captures length samples of the processor's impulse response and
// transforms it. length is rounded up to a power of two. The processor
// should start from silence; a filter that has not decayed within length
// samples shows up as spectral leakage.
func Measure(process Processor, sampleRate float64, length int) (*Response, error) {
	if process == nil || sampleRate <= 0 || !core.IsFinite(sampleRate) || length <= 0 {
		return nil, fmt.Errorf("%w: sampleRate=%v length=%d", ErrInvalidConfig, sampleRate, length)
	}

	fftSize := nextPow2(max(length, minLength))

	ir := make([]float64, fftSize)
	ir[0] = 1
	process(ir)

	in := make([]complex128, fftSize)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: forward fft: %w", err)
	}

	bins := fftSize/2 + 1
	spectrum := out[:bins:bins]

	re := make([]float64, bins)
	im := make([]float64, bins)
	for i, c := range spectrum {
		re[i] = real(c)
		im[i] = imag(c)
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return &Response{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		Spectrum:   spectrum,
		Magnitude:  mag,
		Impulse:    ir,
	}, nil
}

// BinHz returns the frequency spacing of the spectrum bins.
func (r *Response) BinHz() float64 {
	return r.SampleRate / float64(r.FFTSize)
}

// MagnitudeAt returns the linear magnitude at freq, interpolating linearly
// between neighbouring bins. Frequencies are clamped to [0, Nyquist].
func (r *Response) MagnitudeAt(freq float64) float64 {
	last := len(r.Magnitude) - 1
	if last < 0 {
		return 0
	}

	pos := freq / r.BinHz()
	if pos <= 0 {
		return r.Magnitude[0]
	}
	if pos >= float64(last) {
		return r.Magnitude[last]
	}

	i := int(pos)
	frac := pos - float64(i)

	return r.Magnitude[i]*(1-frac) + r.Magnitude[i+1]*frac
}

// MagnitudeDB returns 20*log10 of MagnitudeAt(freq).
func (r *Response) MagnitudeDB(freq float64) float64 {
	return core.LinearToDB(r.MagnitudeAt(freq))
}

// Peak returns the bin frequency with the largest magnitude and its level
// in dB.
func (r *Response) Peak() (freq, db float64) {
	best := 0
	for i, m := range r.Magnitude {
		if m > r.Magnitude[best] {
			best = i
		}
	}

	return float64(best) * r.BinHz(), core.LinearToDB(r.Magnitude[best])
}

// PeakAbs returns the largest absolute impulse response sample.
func (r *Response) PeakAbs() float64 {
	return vecmath.MaxAbs(r.Impulse)
}

// Energy returns the impulse response energy, sum(h[n]^2).
func (r *Response) Energy() float64 {
	return vecmath.DotProduct(r.Impulse, r.Impulse)
}

// SineGainDB drives the processor with a unit sine at freq for settle
// samples, then measures the output to input energy ratio over the next
// measure samples. It is independent of DFT bin placement, so it suits
// single-frequency checks such as a cutoff gain.
func SineGainDB(process Processor, freq, sampleRate float64, settle, measure int) (float64, error) {
	if process == nil || sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 || settle < 0 || measure <= 0 {
		return 0, fmt.Errorf("%w: freq=%v sampleRate=%v settle=%d measure=%d",
			ErrInvalidConfig, freq, sampleRate, settle, measure)
	}

	n := settle + measure
	in := make([]float64, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range in {
		in[i] = math.Sin(w * float64(i))
	}

	out := append([]float64(nil), in...)
	process(out)

	inTail := in[settle:]
	outTail := out[settle:]

	inEnergy := vecmath.DotProduct(inTail, inTail)
	if inEnergy == 0 {
		return 0, fmt.Errorf("%w: probe window holds no energy", ErrInvalidConfig)
	}

	return 10 * math.Log10(vecmath.DotProduct(outTail, outTail)/inEnergy), nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
