//nolint:funcorder
package biquad

import (
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"

	"github.com/cwbudde/matrixfilter/dsp/core"
	archregistry "github.com/cwbudde/matrixfilter/dsp/filter/biquad/internal/arch/registry"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The difference equation is Direct Form I:
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns pass-through coefficients (B0 = 1).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// State is the Direct Form I history of one channel: the two previous
// inputs and the two previous outputs. The zero value is a silent filter.
type State struct {
	x1, x2 float64
	y1, y2 float64
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// Process filters one input sample against c and returns the output.
// Samples must be fed exactly once each, in order.
func (s *State) Process(c *Coefficients, x float64) float64 {
	y := c.B0*x + c.B1*s.x1 + c.B2*s.x2 - c.A1*s.y1 - c.A2*s.y2

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = y

	return y
}

// ProcessBlock filters buf in-place against c. Zero-alloc.
// Like the other block methods it flushes near-zero history to exact zero
// when the block ends, so a filter fed silence settles at zero instead of
// cycling through subnormal values.
func (s *State) ProcessBlock(c *Coefficients, buf []float64) {
	if len(buf) == 0 {
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	h := processBlockImpl(archregistry.Coefficients{
		B0: c.B0,
		B1: c.B1,
		B2: c.B2,
		A1: c.A1,
		A2: c.A2,
	}, s.history(), buf)

	s.x1, s.x2, s.y1, s.y2 = h.X1, h.X2, h.Y1, h.Y2
	s.flushDenormals()
}

// ProcessBlockTo filters src into dst. dst must be at least as long as src.
// Zero-alloc.
func (s *State) ProcessBlockTo(c *Coefficients, dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = s.Process(c, x)
	}
	s.flushDenormals()
}

// ProcessBlock32 filters a 32-bit buffer in-place. The arithmetic and the
// history stay in float64; only the output is rounded back to float32.
func (s *State) ProcessBlock32(c *Coefficients, buf []float32) {
	for i, x := range buf {
		buf[i] = float32(s.Process(c, float64(x)))
	}
	s.flushDenormals()
}

// Reset clears the history to zero.
func (s *State) Reset() {
	*s = State{}
}

// IsZero reports whether all four history values are zero.
func (s *State) IsZero() bool {
	return s.x1 == 0 && s.x2 == 0 && s.y1 == 0 && s.y2 == 0
}

// History returns the current history as [x1, x2, y1, y2].
func (s *State) History() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

// SetHistory restores a history previously returned by History.
func (s *State) SetHistory(h [4]float64) {
	s.x1, s.x2, s.y1, s.y2 = h[0], h[1], h[2], h[3]
}

func (s *State) flushDenormals() {
	s.x1 = core.FlushDenormals(s.x1)
	s.x2 = core.FlushDenormals(s.x2)
	s.y1 = core.FlushDenormals(s.y1)
	s.y2 = core.FlushDenormals(s.y2)
}

func (s *State) history() archregistry.History {
	return archregistry.History{X1: s.x1, X2: s.x2, Y1: s.y1, Y2: s.y2}
}

// KernelName returns the name of the block kernel selected for this CPU,
// selecting it first if no block has been processed yet. Calling it during
// setup keeps feature detection off the audio thread.
func KernelName() string {
	processBlockInitOnce.Do(initProcessBlockKernel)
	return processBlockName
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}

// Section is a single-channel biquad: coefficients plus their own history.
type Section struct {
	Coefficients
	State
}

// NewSection returns a Section initialized with the given coefficients
// and zero history.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	return s.State.Process(&s.Coefficients, x)
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	s.State.ProcessBlock(&s.Coefficients, buf)
}

// ProcessBlockTo filters src into dst. Zero-alloc.
func (s *Section) ProcessBlockTo(dst, src []float64) {
	s.State.ProcessBlockTo(&s.Coefficients, dst, src)
}
