//go:build amd64 && !purego

package avx2

import (
	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/cwbudde/matrixfilter/dsp/filter/biquad/internal/arch/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// processBlock is a 4x-unrolled scalar kernel selected for AVX2-capable CPUs.
// The recursion keeps it sequential; unrolling only trims loop overhead.
func processBlock(c registry.Coefficients, h registry.History, buf []float64) registry.History {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2, y1, y2 := h.X1, h.X2, h.Y1, h.Y2

	i := 0
	n := len(buf)
	for ; i+3 < n; i += 4 {
		in0 := buf[i]
		out0 := b0*in0 + b1*x1 + b2*x2 - a1*y1 - a2*y2

		in1 := buf[i+1]
		out1 := b0*in1 + b1*in0 + b2*x1 - a1*out0 - a2*y1

		in2 := buf[i+2]
		out2 := b0*in2 + b1*in1 + b2*in0 - a1*out1 - a2*out0

		in3 := buf[i+3]
		out3 := b0*in3 + b1*in2 + b2*in1 - a1*out2 - a2*out1

		buf[i] = out0
		buf[i+1] = out1
		buf[i+2] = out2
		buf[i+3] = out3

		x1, x2 = in3, in2
		y1, y2 = out3, out2
	}

	for ; i < n; i++ {
		x := buf[i]
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		buf[i] = y
	}

	return registry.History{X1: x1, X2: x2, Y1: y1, Y2: y2}
}
