package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for names that match no mode.
var ErrUnknownMode = errors.New("matrix: unknown filter mode")

// Mode selects the filter response.
type Mode int

// Filter modes, in host parameter order.
const (
	Lowpass Mode = iota
	Highpass
	Bandpass
	Notch
	Peaking
	LowShelf
	HighShelf
)

// NumModes is the number of filter modes.
const NumModes = 7

var modeNames = [NumModes]string{
	"Lowpass",
	"Highpass",
	"Bandpass",
	"Notch",
	"Peaking",
	"Low Shelf",
	"High Shelf",
}

var modeAliases = map[string]Mode{
	"lowpass":   Lowpass,
	"lp":        Lowpass,
	"lpf":       Lowpass,
	"highpass":  Highpass,
	"hp":        Highpass,
	"hpf":       Highpass,
	"bandpass":  Bandpass,
	"bp":        Bandpass,
	"bpf":       Bandpass,
	"notch":     Notch,
	"bandstop":  Notch,
	"peaking":   Peaking,
	"peak":      Peaking,
	"bell":      Peaking,
	"lowshelf":  LowShelf,
	"ls":        LowShelf,
	"highshelf": HighShelf,
	"hs":        HighShelf,
}

// Modes returns all modes in index order.
func Modes() []Mode {
	modes := make([]Mode, NumModes)
	for i := range modes {
		modes[i] = Mode(i)
	}
	return modes
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Lowpass && m <= HighShelf
}

// UsesGain reports whether the gain parameter affects this mode.
func (m Mode) UsesGain() bool {
	return m == Peaking || m == LowShelf || m == HighShelf
}

// String returns the display name of the mode.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode resolves a mode from its display name, a short alias such as
// "lp" or "bell", or its decimal index. Matching ignores case, spaces,
// dashes and underscores.
func ParseMode(s string) (Mode, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 1 && trimmed[0] >= '0' && trimmed[0] < '0'+NumModes {
		return Mode(trimmed[0] - '0'), nil
	}

	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(trimmed))

	if m, ok := modeAliases[key]; ok {
		return m, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
