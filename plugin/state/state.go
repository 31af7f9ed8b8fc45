// Package state encodes the filter's persisted component state.
//
// The record is 16 bytes, little-endian, in this order:
//
//	int32   filter type index (0..6)
//	float32 cutoff in Hz
//	float32 resonance (Q)
//	float32 gain as a linear multiplier
//
// Gain is stored linearly; it is converted from and to dB at this boundary.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
)

// Size is the encoded record length in bytes.
const Size = 16

// ErrLoadFailed is returned for records that cannot be turned into
// parameters. The cause is wrapped.
var ErrLoadFailed = errors.New("state: load failed")

var (
	errFilterType = errors.New("filter type out of range")
	errNonFinite  = errors.New("non-finite field")
	errGain       = errors.New("linear gain must be positive")
)

// Record is the raw persisted state.
type Record struct {
	FilterType int32
	CutoffHz   float32
	ResonanceQ float32
	LinearGain float32
}

// FromParameters builds the record for p. p is sanitized first.
func FromParameters(p matrix.Parameters) Record {
	p = p.Sanitize()

	return Record{
		FilterType: int32(p.Mode),
		CutoffHz:   float32(p.CutoffHz),
		ResonanceQ: float32(p.Q),
		LinearGain: float32(core.DBToLinear(p.GainDB)),
	}
}

// Validate checks the fields that cannot be clamped into range.
func (r Record) Validate() error {
	if r.FilterType < 0 || r.FilterType >= matrix.NumModes {
		return fmt.Errorf("%w: %w: %d", ErrLoadFailed, errFilterType, r.FilterType)
	}

	for _, v := range [...]float32{r.CutoffHz, r.ResonanceQ, r.LinearGain} {
		if !core.IsFinite(float64(v)) {
			return fmt.Errorf("%w: %w", ErrLoadFailed, errNonFinite)
		}
	}

	if r.LinearGain <= 0 {
		return fmt.Errorf("%w: %w: %v", ErrLoadFailed, errGain, r.LinearGain)
	}

	return nil
}

// Parameters converts the record. Out-of-range cutoff, Q and gain clamp
// silently; an invalid record returns an error wrapping ErrLoadFailed.
func (r Record) Parameters() (matrix.Parameters, error) {
	if err := r.Validate(); err != nil {
		return matrix.Parameters{}, err
	}

	p := matrix.Parameters{
		Mode:     matrix.Mode(r.FilterType),
		CutoffHz: float64(r.CutoffHz),
		Q:        float64(r.ResonanceQ),
		GainDB:   core.LinearToDB(float64(r.LinearGain)),
	}

	return p.Sanitize(), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r Record) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(Size)
	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Bytes past the
// record are ignored. It does not validate the fields.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("%w: %w (%d of %d bytes)", ErrLoadFailed, io.ErrUnexpectedEOF, len(data), Size)
	}

	return binary.Read(bytes.NewReader(data[:Size]), binary.LittleEndian, r)
}

// Encode writes the record for p to w.
func Encode(w io.Writer, p matrix.Parameters) error {
	if err := binary.Write(w, binary.LittleEndian, FromParameters(p)); err != nil {
		return fmt.Errorf("state: write: %w", err)
	}
	return nil
}

// Decode reads one record from rd and converts it. Any failure wraps
// ErrLoadFailed.
func Decode(rd io.Reader) (matrix.Parameters, error) {
	var raw [Size]byte
	if _, err := io.ReadFull(rd, raw[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return matrix.Parameters{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	var r Record
	if err := r.UnmarshalBinary(raw[:]); err != nil {
		return matrix.Parameters{}, err
	}

	return r.Parameters()
}
