package core

// Deinterleave splits frame-interleaved samples into per-channel buffers.
// It returns the number of frames written, bounded by the shortest
// destination buffer.
func Deinterleave(dst [][]float64, src []float64) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}

	frames := len(src) / channels
	for _, ch := range dst {
		if len(ch) < frames {
			frames = len(ch)
		}
	}

	for f := 0; f < frames; f++ {
		base := f * channels
		for c := range dst {
			dst[c][f] = src[base+c]
		}
	}

	return frames
}

// Interleave is the inverse of Deinterleave. It writes frames frames from
// src into dst and returns the number of frames written.
func Interleave(dst []float64, src [][]float64, frames int) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}

	if limit := len(dst) / channels; frames > limit {
		frames = limit
	}
	for _, ch := range src {
		if len(ch) < frames {
			frames = len(ch)
		}
	}

	for f := 0; f < frames; f++ {
		base := f * channels
		for c, ch := range src {
			dst[base+c] = ch[f]
		}
	}

	return frames
}
