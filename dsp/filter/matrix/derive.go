package matrix

import (
	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/biquad"
	"github.com/cwbudde/matrixfilter/dsp/filter/design"
)

// nyquistMargin keeps the cutoff strictly below Nyquist.
const nyquistMargin = 0.999

type designer func(p Parameters, sampleRate float64) biquad.Coefficients

var designers = [NumModes]designer{
	Lowpass: func(p Parameters, sr float64) biquad.Coefficients {
		return design.Lowpass(p.CutoffHz, p.Q, sr)
	},
	Highpass: func(p Parameters, sr float64) biquad.Coefficients {
		return design.Highpass(p.CutoffHz, p.Q, sr)
	},
	Bandpass: func(p Parameters, sr float64) biquad.Coefficients {
		return design.Bandpass(p.CutoffHz, p.Q, sr)
	},
	Notch: func(p Parameters, sr float64) biquad.Coefficients {
		return design.Notch(p.CutoffHz, p.Q, sr)
	},
	Peaking: func(p Parameters, sr float64) biquad.Coefficients {
		return design.Peak(p.CutoffHz, p.GainDB, p.Q, sr)
	},
	LowShelf: func(p Parameters, sr float64) biquad.Coefficients {
		return design.LowShelf(p.CutoffHz, p.GainDB, p.Q, sr)
	},
	HighShelf: func(p Parameters, sr float64) biquad.Coefficients {
		return design.HighShelf(p.CutoffHz, p.GainDB, p.Q, sr)
	},
}

// DeriveCoefficients computes the biquad for p at sampleRate. p is
// sanitized first and the cutoff is held below Nyquist, so the result is
// stable for every input. A non-positive or non-finite sample rate yields
// pass-through coefficients.
//
// The function is pure: equal inputs give bit-identical outputs.
func DeriveCoefficients(p Parameters, sampleRate float64) biquad.Coefficients {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return biquad.Identity()
	}

	p = p.Sanitize()
	if limit := sampleRate / 2 * nyquistMargin; p.CutoffHz > limit {
		p.CutoffHz = limit
	}

	return designers[p.Mode](p, sampleRate)
}
