// Command mfinfo prints the response of the matrix filter modes.
//
// Usage:
//
//	mfinfo [flags] [mode ...]
//
// Without arguments it prints every mode.
//
// Examples:
//
//	mfinfo lowpass
//	mfinfo -cutoff 5000 -q 2 -gain 6 peaking low-shelf
//	mfinfo -rate 96000 -freqs 50,1000,20000
//	mfinfo -measure -fft 16384 notch
//	mfinfo -list
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
	"github.com/cwbudde/matrixfilter/internal/logging"
	"github.com/cwbudde/matrixfilter/measure/response"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	rate    float64
	cutoff  float64
	q       float64
	gain    float64
	freqs   []float64
	measure bool
	fftSize int
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mfinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	rate := fs.Float64("rate", 48000, "sample rate in Hz")
	cutoff := fs.Float64("cutoff", matrix.DefaultCutoffHz, "cutoff/center frequency in Hz")
	q := fs.Float64("q", matrix.DefaultQ, "resonance (Q)")
	gain := fs.Float64("gain", 6, "gain in dB for peaking and shelving modes")
	freqList := fs.String("freqs", "100,1000,10000", "comma-separated probe frequencies in Hz")
	measure := fs.Bool("measure", false, "measure through the filter bank with an FFT instead of evaluating H(z)")
	fftSize := fs.Int("fft", 8192, "impulse response length for -measure")
	list := fs.Bool("list", false, "list available mode names")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mfinfo [flags] [mode ...]\n\n")
		fmt.Fprintf(stderr, "Prints pole radius and magnitude response of the filter modes.\n")
		fmt.Fprintf(stderr, "Without arguments, prints every mode.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, err := logging.New(stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if *list {
		for _, m := range matrix.Modes() {
			fmt.Fprintln(stdout, m)
		}
		return 0
	}

	freqs, err := parseFreqs(*freqList)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	modes, err := resolveModes(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "error: %v (use -list to see available)\n", err)
		return 1
	}

	opts := options{
		rate:    *rate,
		cutoff:  *cutoff,
		q:       *q,
		gain:    *gain,
		freqs:   freqs,
		measure: *measure,
		fftSize: *fftSize,
	}
	logger.Debug("mfinfo", "modes", len(modes), "rate", opts.rate, "measure", opts.measure)

	if err := printAnalysis(stdout, modes, opts); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

func resolveModes(names []string) ([]matrix.Mode, error) {
	if len(names) == 0 {
		return matrix.Modes(), nil
	}

	modes := make([]matrix.Mode, 0, len(names))
	for _, name := range names {
		m, err := matrix.ParseMode(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

func parseFreqs(list string) ([]float64, error) {
	var freqs []float64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid probe frequency %q", field)
		}
		freqs = append(freqs, f)
	}
	if len(freqs) == 0 {
		return nil, errors.New("no probe frequencies")
	}
	return freqs, nil
}

func printAnalysis(w io.Writer, modes []matrix.Mode, opts options) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"Mode", "Parameters", "Pole radius", "Stable"}
	rule := []string{"----", "----------", "-----------", "------"}
	for _, f := range opts.freqs {
		label := fmt.Sprintf("%g Hz [dB]", f)
		header = append(header, label)
		rule = append(rule, strings.Repeat("-", len(label)))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rule, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, m := range modes {
		p := matrix.Parameters{Mode: m, CutoffHz: opts.cutoff, Q: opts.q, GainDB: opts.gain}.Sanitize()
		c := matrix.DeriveCoefficients(p, opts.rate)

		var measured *response.Response
		if opts.measure {
			b := matrix.NewBank(matrix.WithSampleRate(opts.rate), matrix.WithParameters(p))
			r, err := response.Measure(func(buf []float64) {
				b.ProcessBlock([][]float64{buf}, len(buf))
			}, opts.rate, opts.fftSize)
			if err != nil {
				return fmt.Errorf("measure %v: %w", m, err)
			}
			measured = r
		}

		row := []string{
			m.String(),
			p.String(),
			fmt.Sprintf("%.6f", c.PoleRadius()),
			strconv.FormatBool(c.IsStable()),
		}
		for _, f := range opts.freqs {
			var db float64
			if measured != nil {
				db = measured.MagnitudeDB(f)
			} else {
				db = c.MagnitudeDB(f, opts.rate)
			}
			row = append(row, fmt.Sprintf("%.2f", db))
		}

		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
