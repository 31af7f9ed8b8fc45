package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
	"github.com/cwbudde/matrixfilter/internal/logging"
	"github.com/cwbudde/matrixfilter/plugin"
	"github.com/cwbudde/matrixfilter/plugin/param"
)

const wavFormatPCM = 1

var (
	errInvalidInput = errors.New("invalid input")
	errBlockSize    = errors.New("block size must be positive")
)

type renderConfig struct {
	inPath    string
	outPath   string
	params    matrix.Parameters
	blockSize int
	bitDepth  int
	stateIn   string
	stateOut  string
	// explicit holds the names of flags set on the command line.
	explicit map[string]bool
	logger   *slog.Logger
}

type renderSummary struct {
	frames     int
	channels   int
	sampleRate int
	params     matrix.Parameters
	peakIn     float64
	peakOut    float64
}

func (s renderSummary) String() string {
	return fmt.Sprintf("rendered %d frames (%d ch, %d Hz) with %s, peak %.2f dBFS -> %.2f dBFS",
		s.frames, s.channels, s.sampleRate, s.params, core.LinearToDB(s.peakIn), core.LinearToDB(s.peakOut))
}

func render(cfg renderConfig) (renderSummary, error) {
	if cfg.blockSize <= 0 {
		return renderSummary{}, fmt.Errorf("%w: %d", errBlockSize, cfg.blockSize)
	}

	if cfg.logger == nil {
		cfg.logger = logging.Discard()
	}

	src, err := readWAV(cfg.inPath)
	if err != nil {
		return renderSummary{}, err
	}

	bitDepth := cfg.bitDepth
	if bitDepth == 0 {
		bitDepth = src.bitDepth
	}
	if !supportedBitDepth(bitDepth) {
		return renderSummary{}, fmt.Errorf("%w: unsupported output bit depth %d", errInvalidInput, bitDepth)
	}

	proc := plugin.NewProcessor(
		plugin.WithLogger(cfg.logger),
		plugin.WithProcessorOptions(core.WithSampleRate(float64(src.sampleRate)), core.WithBlockSize(cfg.blockSize)),
	)
	if err := proc.Initialize(); err != nil {
		return renderSummary{}, err
	}
	defer proc.Terminate()

	if err := proc.SetupProcessing(float64(src.sampleRate), cfg.blockSize); err != nil {
		return renderSummary{}, err
	}
	if err := applyParameters(proc, cfg); err != nil {
		return renderSummary{}, err
	}
	if err := proc.SetActive(true); err != nil {
		return renderSummary{}, err
	}

	summary := renderSummary{
		frames:     src.frames(),
		channels:   len(src.channels),
		sampleRate: src.sampleRate,
		params:     proc.Parameters(),
		peakIn:     peak(src.channels),
	}

	out, err := processChannels(proc, src.channels, cfg.blockSize)
	if err != nil {
		return renderSummary{}, err
	}
	summary.peakOut = peak(out)

	if err := writeWAV(cfg.outPath, out, src.sampleRate, bitDepth); err != nil {
		return renderSummary{}, err
	}

	if cfg.stateOut != "" {
		if err := writeState(proc, cfg.stateOut); err != nil {
			return renderSummary{}, err
		}
	}

	cfg.logger.Info("render finished",
		"in", cfg.inPath,
		"out", cfg.outPath,
		"frames", summary.frames,
		"bits", bitDepth)

	return summary, nil
}

// applyParameters loads the optional state record and then applies the
// parameters given explicitly on the command line.
func applyParameters(proc *plugin.Processor, cfg renderConfig) error {
	explicit := cfg.explicit
	if cfg.stateIn == "" {
		// Without a record every flag value applies, defaults included.
		explicit = map[string]bool{"mode": true, "cutoff": true, "q": true, "gain": true}
	} else {
		f, err := os.Open(cfg.stateIn)
		if err != nil {
			return fmt.Errorf("open state: %w", err)
		}
		defer f.Close()

		if err := proc.SetState(f); err != nil {
			return fmt.Errorf("%s: %w", cfg.stateIn, err)
		}
	}

	values := param.FromParameters(cfg.params)
	for _, set := range []struct {
		flag string
		id   param.ID
	}{
		{"mode", param.FilterType},
		{"cutoff", param.Cutoff},
		{"q", param.Resonance},
		{"gain", param.Gain},
	} {
		if !explicit[set.flag] {
			continue
		}
		slot, _ := param.Slot(set.id)
		if err := proc.SetParamNormalized(set.id, values[slot]); err != nil {
			return err
		}
	}

	return nil
}

// processChannels runs the processor over whole channels block by block.
// Mono input is duplicated onto the second bus and only the first output
// is kept.
func processChannels(proc *plugin.Processor, channels [][]float64, blockSize int) ([][]float64, error) {
	frames := len(channels[0])
	in := make([][]float64, matrix.Channels)
	out := make([][]float64, matrix.Channels)
	for ch := range matrix.Channels {
		in[ch] = channels[min(ch, len(channels)-1)]
		out[ch] = make([]float64, frames)
	}

	data := &plugin.ProcessData{
		SampleSize: plugin.Sample64,
		Inputs64:   make([][]float64, matrix.Channels),
		Outputs64:  make([][]float64, matrix.Channels),
	}
	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		data.NumSamples = end - start
		for ch := range matrix.Channels {
			data.Inputs64[ch] = in[ch][start:end]
			data.Outputs64[ch] = out[ch][start:end]
		}
		if err := proc.Process(data); err != nil {
			return nil, fmt.Errorf("process block at frame %d: %w", start, err)
		}
	}

	return out[:len(channels)], nil
}

func peak(channels [][]float64) float64 {
	var p float64
	for _, ch := range channels {
		p = max(p, vecmath.MaxAbs(ch))
	}
	return p
}

func writeState(proc *plugin.Processor, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state: %w", err)
	}

	if err := proc.GetState(f); err != nil {
		f.Close()
		return fmt.Errorf("write state: %w", err)
	}

	return f.Close()
}
