package matrix

import (
	"fmt"

	"github.com/cwbudde/matrixfilter/dsp/core"
)

// Parameter ranges.
const (
	MinCutoffHz = 20.0
	MaxCutoffHz = 20000.0
	MinQ        = 0.1
	MaxQ        = 10.0
	MinGainDB   = -24.0
	MaxGainDB   = 24.0
)

// Parameter defaults.
const (
	DefaultMode     = Lowpass
	DefaultCutoffHz = 1000.0
	DefaultQ        = 0.707
	DefaultGainDB   = 0.0
)

// Parameters is one complete filter setting. It is a plain value; a Bank
// stores its own sanitized copy.
type Parameters struct {
	Mode     Mode
	CutoffHz float64
	Q        float64
	GainDB   float64
}

// DefaultParameters returns Lowpass at 1 kHz, Q 0.707, 0 dB.
func DefaultParameters() Parameters {
	return Parameters{
		Mode:     DefaultMode,
		CutoffHz: DefaultCutoffHz,
		Q:        DefaultQ,
		GainDB:   DefaultGainDB,
	}
}

// Sanitize clamps every field into its range. NaN fields take the
// default for that field and out-of-range modes clamp to the nearest mode.
func (p Parameters) Sanitize() Parameters {
	mode := p.Mode
	if mode < Lowpass {
		mode = Lowpass
	} else if mode > HighShelf {
		mode = HighShelf
	}

	return Parameters{
		Mode:     mode,
		CutoffHz: core.ClampOr(p.CutoffHz, MinCutoffHz, MaxCutoffHz, DefaultCutoffHz),
		Q:        core.ClampOr(p.Q, MinQ, MaxQ, DefaultQ),
		GainDB:   core.ClampOr(p.GainDB, MinGainDB, MaxGainDB, DefaultGainDB),
	}
}

// String formats p for logs and CLI output.
func (p Parameters) String() string {
	return fmt.Sprintf("%s %.1f Hz Q=%.3f %+.1f dB", p.Mode, p.CutoffHz, p.Q, p.GainDB)
}
