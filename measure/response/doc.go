// Package response measures the frequency response of a block processor.
//
// [Measure] feeds a unit impulse through the processor and takes the DFT of
// the captured impulse response. [SineGainDB] drives the processor with a
// steady sine and compares output to input energy once the transient has
// settled. Both work on any in-place float64 processor, so they can probe a
// single biquad, a whole filter bank or a plugin adapter alike.
package response
