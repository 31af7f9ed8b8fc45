package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/matrixfilter/dsp/core"
	"github.com/cwbudde/matrixfilter/dsp/filter/matrix"
)

// pcm is a decoded WAV file with samples scaled to [-1, 1).
type pcm struct {
	channels   [][]float64
	sampleRate int
	bitDepth   int
}

func (p pcm) frames() int {
	if len(p.channels) == 0 {
		return 0
	}
	return len(p.channels[0])
}

func supportedBitDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

func fullScale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

func readWAV(path string) (pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return pcm{}, fmt.Errorf("%w: %s is not a WAV file", errInvalidInput, path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return pcm{}, fmt.Errorf("%w: %s: only integer PCM is supported (format %d)", errInvalidInput, path, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	if !supportedBitDepth(bits) {
		return pcm{}, fmt.Errorf("%w: %s: unsupported bit depth %d", errInvalidInput, path, bits)
	}

	numChans := int(dec.NumChans)
	if numChans < 1 || numChans > matrix.Channels {
		return pcm{}, fmt.Errorf("%w: %s: %d channels, want 1 or %d", errInvalidInput, path, numChans, matrix.Channels)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("decode %s: %w", path, err)
	}

	samples := make([]float64, len(buf.Data))
	scale := 1 / fullScale(bits)
	for i, v := range buf.Data {
		samples[i] = float64(v) * scale
	}

	channels := make([][]float64, numChans)
	frames := len(samples) / numChans
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	core.Deinterleave(channels, samples[:frames*numChans])

	return pcm{
		channels:   channels,
		sampleRate: int(dec.SampleRate),
		bitDepth:   bits,
	}, nil
}

func writeWAV(path string, channels [][]float64, sampleRate, bits int) error {
	frames := len(channels[0])
	interleaved := make([]float64, frames*len(channels))
	core.Interleave(interleaved, channels, frames)

	scale := fullScale(bits)
	lo, hi := -scale, scale-1
	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = int(core.Clamp(math.Round(v*scale), lo, hi))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bits, len(channels), wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return f.Close()
}
