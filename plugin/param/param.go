// Package param maps host-normalized parameter values in [0, 1] to filter
// parameters and back.
//
// Cutoff is logarithmic across 20 Hz to 20 kHz. Resonance and gain are
// linear. The filter type is a 7-step list.
package param

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
	"github.com/cwbudde/matrixfilter/plugin/state"
)

// ID identifies a host parameter.
type ID uint32

// Host parameter IDs.
const (
	FilterType ID = 100
	Cutoff     ID = 101
	Resonance  ID = 102
	Gain       ID = 103
)

// Count is the number of host parameters.
const Count = 4

// ErrUnknownID is returned for IDs outside the parameter set.
var ErrUnknownID = errors.New("param: unknown parameter id")

// cutoffRange is MaxCutoffHz / MinCutoffHz.
var cutoffRange = math.Log(matrix.MaxCutoffHz / matrix.MinCutoffHz)

// Info describes one parameter for host registration.
type Info struct {
	ID        ID
	Name      string
	Unit      string
	StepCount int
	// Default is the normalized default value.
	Default float64
}

var infos = [Count]Info{
	{ID: FilterType, Name: "Filter Type", StepCount: matrix.NumModes - 1, Default: ModeToNormalized(matrix.DefaultMode)},
	{ID: Cutoff, Name: "Cutoff", Unit: "Hz", Default: CutoffToNormalized(matrix.DefaultCutoffHz)},
	{ID: Resonance, Name: "Resonance", Unit: "Q", Default: QToNormalized(matrix.DefaultQ)},
	{ID: Gain, Name: "Gain", Unit: "dB", Default: GainToNormalized(matrix.DefaultGainDB)},
}

// Infos returns the parameter descriptions in ID order.
func Infos() []Info {
	out := make([]Info, Count)
	copy(out, infos[:])
	return out
}

// Slot returns the position of id in ID order without allocating.
func Slot(id ID) (int, bool) {
	if id < FilterType || id > Gain {
		return 0, false
	}
	return int(id - FilterType), true
}

// Index is Slot with an error for unknown IDs.
func Index(id ID) (int, error) {
	i, ok := Slot(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return i, nil
}

// Lookup returns the description of id.
func Lookup(id ID) (Info, error) {
	i, err := Index(id)
	if err != nil {
		return Info{}, err
	}
	return infos[i], nil
}

func unit(v float64) float64 {
	return core.ClampOr(v, 0, 1, 0)
}

// ModeFromNormalized rounds v to the nearest of the seven modes.
func ModeFromNormalized(v float64) matrix.Mode {
	return matrix.Mode(math.Round(unit(v) * (matrix.NumModes - 1)))
}

// ModeToNormalized is the inverse of ModeFromNormalized.
func ModeToNormalized(m matrix.Mode) float64 {
	return unit(float64(m) / (matrix.NumModes - 1))
}

// CutoffFromNormalized maps v to 20 * 1000^v Hz.
func CutoffFromNormalized(v float64) float64 {
	return matrix.MinCutoffHz * math.Exp(unit(v)*cutoffRange)
}

// CutoffToNormalized is the inverse of CutoffFromNormalized.
func CutoffToNormalized(hz float64) float64 {
	if !(hz > 0) {
		return 0
	}
	return unit(math.Log(hz/matrix.MinCutoffHz) / cutoffRange)
}

// QFromNormalized maps v linearly onto [0.1, 10].
func QFromNormalized(v float64) float64 {
	return matrix.MinQ + unit(v)*(matrix.MaxQ-matrix.MinQ)
}

// QToNormalized is the inverse of QFromNormalized.
func QToNormalized(q float64) float64 {
	return unit((q - matrix.MinQ) / (matrix.MaxQ - matrix.MinQ))
}

// GainFromNormalized maps v linearly onto [-24, 24] dB, 0 dB at 0.5.
func GainFromNormalized(v float64) float64 {
	return matrix.MinGainDB + unit(v)*(matrix.MaxGainDB-matrix.MinGainDB)
}

// GainToNormalized is the inverse of GainFromNormalized.
func GainToNormalized(db float64) float64 {
	return unit((db - matrix.MinGainDB) / (matrix.MaxGainDB - matrix.MinGainDB))
}

// Denormalize converts a normalized value of parameter id to its plain
// value: mode index, Hz, Q or dB.
func Denormalize(id ID, v float64) (float64, error) {
	switch id {
	case FilterType:
		return float64(ModeFromNormalized(v)), nil
	case Cutoff:
		return CutoffFromNormalized(v), nil
	case Resonance:
		return QFromNormalized(v), nil
	case Gain:
		return GainFromNormalized(v), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownID, id)
}

// Normalize converts a plain value of parameter id to [0, 1].
func Normalize(id ID, plain float64) (float64, error) {
	switch id {
	case FilterType:
		return ModeToNormalized(matrix.Mode(math.Round(core.ClampOr(plain, 0, matrix.NumModes-1, 0)))), nil
	case Cutoff:
		return CutoffToNormalized(plain), nil
	case Resonance:
		return QToNormalized(plain), nil
	case Gain:
		return GainToNormalized(plain), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownID, id)
}

// Values holds one normalized value per parameter, in ID order.
type Values [Count]float64

// Defaults returns the normalized defaults.
func Defaults() Values {
	var v Values
	for i, info := range infos {
		v[i] = info.Default
	}
	return v
}

// FromNormalized converts normalized values to filter parameters.
func FromNormalized(v Values) matrix.Parameters {
	return matrix.Parameters{
		Mode:     ModeFromNormalized(v[0]),
		CutoffHz: CutoffFromNormalized(v[1]),
		Q:        QFromNormalized(v[2]),
		GainDB:   GainFromNormalized(v[3]),
	}
}

// FromParameters converts filter parameters to normalized values.
func FromParameters(p matrix.Parameters) Values {
	p = p.Sanitize()
	return Values{
		ModeToNormalized(p.Mode),
		CutoffToNormalized(p.CutoffHz),
		QToNormalized(p.Q),
		GainToNormalized(p.GainDB),
	}
}

// FromRecord normalizes a persisted state record for the controller side.
// It fails like state.Record.Parameters for invalid records.
func FromRecord(r state.Record) (Values, error) {
	p, err := r.Parameters()
	if err != nil {
		return Values{}, err
	}
	return FromParameters(p), nil
}
