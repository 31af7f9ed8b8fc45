package matrix

import "github.com/cwbudde/matrixfilter/dsp/filter/biquad"

// Unit is one channel of the filter: its Direct Form I history. The
// coefficients are passed in so every channel of a Bank shares one set.
// A Unit must only be used by one goroutine at a time.
type Unit struct {
	state biquad.State
}

// Process filters one sample.
func (u *Unit) Process(c *biquad.Coefficients, x float64) float64 {
	return u.state.Process(c, x)
}

// ProcessBlock filters buf in-place.
func (u *Unit) ProcessBlock(c *biquad.Coefficients, buf []float64) {
	u.state.ProcessBlock(c, buf)
}

// ProcessBlock32 filters a 32-bit buffer in-place with float64 history.
func (u *Unit) ProcessBlock32(c *biquad.Coefficients, buf []float32) {
	u.state.ProcessBlock32(c, buf)
}

// Reset zeroes the history.
func (u *Unit) Reset() {
	u.state.Reset()
}

// IsZero reports whether the history is all zeros.
func (u *Unit) IsZero() bool {
	return u.state.IsZero()
}

// History returns the history as [x1, x2, y1, y2].
func (u *Unit) History() [4]float64 {
	return u.state.History()
}
