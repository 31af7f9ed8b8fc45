package matrix

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/biquad"
)

// Channels is the number of channels a Bank processes.
const Channels = 2

// dirtyBit marks the middle slot as holding a snapshot the reader has not
// picked up yet. The low bits hold the slot index.
const (
	dirtyBit  = 1 << 2
	indexMask = dirtyBit - 1
)

// snapshot is everything the audio goroutine needs for one block.
type snapshot struct {
	params     Parameters
	coeffs     biquad.Coefficients
	sampleRate float64
	active     bool
	// resetGen increments whenever the channel histories must be cleared.
	resetGen uint64
	revision uint64
}

// Option configures a Bank.
type Option func(*bankConfig)

type bankConfig struct {
	proc   core.ProcessorConfig
	params Parameters
	active bool
}

// WithSampleRate sets the initial sample rate. Invalid rates are ignored.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *bankConfig) {
		core.WithSampleRate(sampleRate)(&cfg.proc)
	}
}

// WithParameters sets the initial parameters.
func WithParameters(p Parameters) Option {
	return func(cfg *bankConfig) {
		cfg.params = p
	}
}

// WithActive sets whether the bank starts active. Defaults to true.
func WithActive(active bool) Option {
	return func(cfg *bankConfig) {
		cfg.active = active
	}
}

// Bank is a two-channel filter driven by one shared parameter snapshot.
//
// SetParameters, TrySetParameters, SetSampleRate, SetActive, Reset and the
// accessors may be called from any goroutine. ProcessBlock and
// ProcessBlock32 must be called from a single audio goroutine; they never
// block, allocate or log.
type Bank struct {
	// mu serializes writers. The audio goroutine only ever TryLocks it.
	mu      sync.Mutex
	current snapshot
	back    uint32

	slots  [3]snapshot
	middle atomic.Uint32

	kernel string

	// Owned by the audio goroutine.
	front     uint32
	seenReset uint64
	units     [Channels]Unit
}

// NewBank returns an active bank with default parameters at 44.1 kHz
// unless options say otherwise.
func NewBank(opts ...Option) *Bank {
	cfg := bankConfig{
		proc:   core.DefaultProcessorConfig(),
		params: DefaultParameters(),
		active: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	// Kernel selection runs CPU detection and takes the registry lock, so
	// it happens here rather than on the first audio block.
	b := &Bank{kernel: biquad.KernelName()}
	b.current = snapshot{
		params:     cfg.params.Sanitize(),
		sampleRate: cfg.proc.SampleRate,
		active:     cfg.active,
	}
	b.current.coeffs = DeriveCoefficients(b.current.params, b.current.sampleRate)

	for i := range b.slots {
		b.slots[i] = b.current
	}
	b.front = 0
	b.middle.Store(1)
	b.back = 2

	return b
}

// SetParameters publishes p if it differs from the current parameters.
// It reports whether anything changed; an unchanged call leaves the
// coefficients and the revision untouched.
func (b *Bank) SetParameters(p Parameters) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.setParametersLocked(p)
}

// TrySetParameters is SetParameters without blocking. If another writer
// holds the bank, applied is false and the caller should retry later,
// typically at the next block.
func (b *Bank) TrySetParameters(p Parameters) (changed, applied bool) {
	if !b.mu.TryLock() {
		return false, false
	}
	defer b.mu.Unlock()

	return b.setParametersLocked(p), true
}

func (b *Bank) setParametersLocked(p Parameters) bool {
	p = p.Sanitize()
	if p == b.current.params {
		return false
	}

	b.current.params = p
	b.current.coeffs = DeriveCoefficients(p, b.current.sampleRate)
	b.publishLocked()

	return true
}

// SetSampleRate changes the processing rate. On a change the coefficients
// are recomputed and every channel history is cleared before the next
// block. Invalid rates are ignored. It reports whether the rate changed.
func (b *Bank) SetSampleRate(sampleRate float64) bool {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sampleRate == b.current.sampleRate {
		return false
	}

	b.current.sampleRate = sampleRate
	b.current.coeffs = DeriveCoefficients(b.current.params, sampleRate)
	b.current.resetGen++
	b.publishLocked()

	return true
}

// SetActive switches processing on or off. An inactive bank leaves buffers
// untouched. Every transition clears the channel histories. It reports
// whether the state changed.
func (b *Bank) SetActive(active bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if active == b.current.active {
		return false
	}

	b.current.active = active
	b.current.coeffs = DeriveCoefficients(b.current.params, b.current.sampleRate)
	b.current.resetGen++
	b.publishLocked()

	return true
}

// Reset requests that every channel history be cleared before the next
// block.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current.resetGen++
	b.publishLocked()
}

// publishLocked copies current into the back slot and swaps it into the
// middle. Caller holds mu.
func (b *Bank) publishLocked() {
	b.current.revision++
	b.slots[b.back] = b.current
	prev := b.middle.Swap(b.back | dirtyBit)
	b.back = prev & indexMask
}

// acquire picks up the newest published snapshot and applies any pending
// reset. Audio goroutine only.
func (b *Bank) acquire() *snapshot {
	if b.middle.Load()&dirtyBit != 0 {
		b.front = b.middle.Swap(b.front) & indexMask
	}

	s := &b.slots[b.front]
	if s.resetGen != b.seenReset {
		for i := range b.units {
			b.units[i].Reset()
		}
		b.seenReset = s.resetGen
	}

	return s
}

// ProcessBlock filters the first n samples of up to Channels buffers
// in-place. Extra buffers are left untouched and n is limited to each
// buffer's length.
func (b *Bank) ProcessBlock(buffers [][]float64, n int) {
	s := b.acquire()
	if !s.active || n <= 0 {
		return
	}

	channels := min(len(buffers), Channels)
	for ch := range channels {
		buf := buffers[ch]
		b.units[ch].ProcessBlock(&s.coeffs, buf[:min(n, len(buf))])
	}
}

// ProcessBlock32 is ProcessBlock for 32-bit sample buffers.
func (b *Bank) ProcessBlock32(buffers [][]float32, n int) {
	s := b.acquire()
	if !s.active || n <= 0 {
		return
	}

	channels := min(len(buffers), Channels)
	for ch := range channels {
		buf := buffers[ch]
		b.units[ch].ProcessBlock32(&s.coeffs, buf[:min(n, len(buf))])
	}
}

// ChannelHistory returns the history of channel ch. Like ProcessBlock it
// must only be called from the audio goroutine.
func (b *Bank) ChannelHistory(ch int) [4]float64 {
	return b.units[ch].History()
}

// Kernel returns the name of the block kernel the bank runs.
func (b *Bank) Kernel() string {
	return b.kernel
}

// Parameters returns the most recently published parameters.
func (b *Bank) Parameters() Parameters {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current.params
}

// Coefficients returns the most recently published coefficients.
func (b *Bank) Coefficients() biquad.Coefficients {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current.coeffs
}

// SampleRate returns the current sample rate.
func (b *Bank) SampleRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current.sampleRate
}

// Active reports whether the bank is processing.
func (b *Bank) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current.active
}

// Revision returns the number of snapshots published since construction.
func (b *Bank) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current.revision
}
