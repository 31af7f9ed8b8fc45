// Package plugin adapts the matrix filter to a host plugin API.
//
// Processor follows the VST3/CLAP audio-processor lifecycle: Initialize,
// SetupProcessing, SetActive, Process and Terminate, plus normalized
// parameter access and component state I/O. It is API-neutral; a host
// binding translates its own calls into these.
package plugin

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
	"github.com/cwbudde/matrixfilter/internal/logging"
	"github.com/cwbudde/matrixfilter/plugin/param"
	"github.com/cwbudde/matrixfilter/plugin/state"
)

// Errors returned by Processor.
var (
	ErrUnknownParameter = errors.New("plugin: unknown parameter")
	ErrBusLayout        = errors.New("plugin: unsupported bus layout")
	ErrNotInitialized   = errors.New("plugin: not initialized")
	ErrInvalidSetup     = errors.New("plugin: invalid processing setup")
)

// SampleSize is the host sample format.
type SampleSize int

// Supported sample formats.
const (
	Sample32 SampleSize = iota
	Sample64
)

func (s SampleSize) String() string {
	switch s {
	case Sample32:
		return "float32"
	case Sample64:
		return "float64"
	}
	return fmt.Sprintf("SampleSize(%d)", int(s))
}

// ParamChange is one normalized parameter value delivered with a block.
// Changes apply at block start; for repeated IDs the last one wins.
type ParamChange struct {
	ID           param.ID
	SampleOffset int
	Value        float64
}

// ProcessData is one audio block. Only the buffers matching SampleSize
// are read. Inputs and outputs hold one slice per channel and may alias.
type ProcessData struct {
	SampleSize SampleSize
	NumSamples int

	Inputs32  [][]float32
	Outputs32 [][]float32
	Inputs64  [][]float64
	Outputs64 [][]float64

	ParamChanges []ParamChange
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for lifecycle and state events. The audio
// path never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProcessorOptions sets the initial processing setup.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(p *Processor) {
		for _, opt := range opts {
			if opt != nil {
				opt(&p.cfg)
			}
		}
	}
}

// Processor is the audio side of the plugin.
type Processor struct {
	logger *slog.Logger
	cfg    core.ProcessorConfig

	bank atomic.Pointer[matrix.Bank]

	// values holds the normalized parameter values as float64 bits.
	values [param.Count]atomic.Uint64

	// mu serializes parameter publishing so the bank always ends up with
	// the latest values. The audio goroutine only TryLocks it.
	mu sync.Mutex
	// pending is set when the audio goroutine could not publish.
	pending atomic.Bool
}

// NewProcessor returns an uninitialized processor with default parameters.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		logger: logging.Discard(),
		cfg:    core.DefaultProcessorConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	for i, v := range param.Defaults() {
		p.values[i].Store(math.Float64bits(v))
	}

	return p
}

// Initialize creates the filter bank. It starts inactive.
func (p *Processor) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bank.Load() != nil {
		return nil
	}

	params := param.FromNormalized(p.loadValues())
	b := matrix.NewBank(
		matrix.WithSampleRate(p.cfg.SampleRate),
		matrix.WithParameters(params),
		matrix.WithActive(false),
	)
	p.bank.Store(b)

	p.logger.Info("processor initialized",
		"sampleRate", p.cfg.SampleRate,
		"maxBlock", p.cfg.BlockSize,
		"kernel", b.Kernel(),
		"params", params.String())

	return nil
}

// Terminate releases the bank. The processor may be initialized again.
func (p *Processor) Terminate() {
	if p.bank.Swap(nil) != nil {
		p.logger.Info("processor terminated")
	}
}

// SetupProcessing sets the sample rate and the largest block the host
// will deliver. A rate change clears the filter history.
func (p *Processor) SetupProcessing(sampleRate float64, maxBlock int) error {
	b := p.bank.Load()
	if b == nil {
		return ErrNotInitialized
	}
	if sampleRate <= 0 || !core.IsFinite(sampleRate) || maxBlock <= 0 {
		return fmt.Errorf("%w: sampleRate=%v maxBlock=%d", ErrInvalidSetup, sampleRate, maxBlock)
	}

	p.mu.Lock()
	p.cfg = core.ApplyProcessorOptions(core.WithSampleRate(sampleRate), core.WithBlockSize(maxBlock))
	changed := b.SetSampleRate(sampleRate)
	p.mu.Unlock()

	p.logger.Info("processing setup", "sampleRate", sampleRate, "maxBlock", maxBlock, "rateChanged", changed)

	return nil
}

// ProcessingSetup returns the current sample rate and maximum block size.
func (p *Processor) ProcessingSetup() core.ProcessorConfig {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cfg
}

// SetActive starts or stops processing. Every transition clears the
// filter history.
func (p *Processor) SetActive(active bool) error {
	b := p.bank.Load()
	if b == nil {
		return ErrNotInitialized
	}

	if b.SetActive(active) {
		p.logger.Debug("processor active state changed", "active", active)
	}

	return nil
}

// CanProcessSampleSize reports whether size is supported.
func (p *Processor) CanProcessSampleSize(size SampleSize) bool {
	return size == Sample32 || size == Sample64
}

// SetParamNormalized sets one parameter from the control side and
// publishes the result. Values outside [0, 1] are clamped.
func (p *Processor) SetParamNormalized(id param.ID, value float64) error {
	i, err := param.Index(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownParameter, err)
	}

	p.values[i].Store(math.Float64bits(core.ClampOr(value, 0, 1, param.Defaults()[i])))

	p.mu.Lock()
	defer p.mu.Unlock()

	if b := p.bank.Load(); b != nil {
		b.SetParameters(param.FromNormalized(p.loadValues()))
	}

	return nil
}

// ParamNormalized returns the current normalized value of a parameter.
func (p *Processor) ParamNormalized(id param.ID) (float64, error) {
	i, err := param.Index(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnknownParameter, err)
	}

	return math.Float64frombits(p.values[i].Load()), nil
}

// Parameters returns the parameters the filter is running with, or the
// ones it will start with if it is not initialized yet.
func (p *Processor) Parameters() matrix.Parameters {
	if b := p.bank.Load(); b != nil {
		return b.Parameters()
	}
	return param.FromNormalized(p.loadValues())
}

func (p *Processor) loadValues() param.Values {
	var v param.Values
	for i := range v {
		v[i] = math.Float64frombits(p.values[i].Load())
	}
	return v
}

// Process runs one block. It never blocks, allocates or logs. Parameter
// changes apply at block start; if the control side holds the parameter
// lock they are retried on the next block.
func (p *Processor) Process(data *ProcessData) error {
	b := p.bank.Load()
	if b == nil {
		return ErrNotInitialized
	}

	defaults := param.Defaults()
	for _, change := range data.ParamChanges {
		i, ok := param.Slot(change.ID)
		if !ok {
			continue
		}
		p.values[i].Store(math.Float64bits(core.ClampOr(change.Value, 0, 1, defaults[i])))
		p.pending.Store(true)
	}

	if p.pending.Load() {
		p.publishFromAudio(b)
	}

	n := data.NumSamples
	if n < 0 {
		return ErrBusLayout
	}

	switch data.SampleSize {
	case Sample32:
		if !validBuses(data.Inputs32, data.Outputs32, n) {
			return ErrBusLayout
		}
		for ch := range matrix.Channels {
			copy(data.Outputs32[ch][:n], data.Inputs32[ch][:n])
		}
		b.ProcessBlock32(data.Outputs32, n)
	case Sample64:
		if !validBuses(data.Inputs64, data.Outputs64, n) {
			return ErrBusLayout
		}
		for ch := range matrix.Channels {
			copy(data.Outputs64[ch][:n], data.Inputs64[ch][:n])
		}
		b.ProcessBlock(data.Outputs64, n)
	default:
		return ErrBusLayout
	}

	return nil
}

func (p *Processor) publishFromAudio(b *matrix.Bank) {
	if !p.mu.TryLock() {
		return
	}
	defer p.mu.Unlock()

	p.pending.Store(false)
	if _, applied := b.TrySetParameters(param.FromNormalized(p.loadValues())); !applied {
		p.pending.Store(true)
	}
}

func validBuses[T float32 | float64](in, out [][]T, n int) bool {
	if len(in) != matrix.Channels || len(out) != matrix.Channels {
		return false
	}
	for ch := range matrix.Channels {
		if len(in[ch]) < n || len(out[ch]) < n {
			return false
		}
	}
	return true
}

// GetState writes the component state record.
func (p *Processor) GetState(w io.Writer) error {
	return state.Encode(w, p.Parameters())
}

// SetState loads a component state record. On failure the current
// parameters are kept and the error wraps state.ErrLoadFailed.
func (p *Processor) SetState(r io.Reader) error {
	params, err := state.Decode(r)
	if err != nil {
		p.logger.Warn("state load failed", "error", err)
		return err
	}

	values := param.FromParameters(params)

	p.mu.Lock()
	defer p.mu.Unlock()

	for i, v := range values {
		p.values[i].Store(math.Float64bits(v))
	}
	if b := p.bank.Load(); b != nil {
		b.SetParameters(params)
	}

	p.logger.Info("state loaded", "params", params.String())

	return nil
}
