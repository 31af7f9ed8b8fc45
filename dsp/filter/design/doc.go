// Package design provides RBJ audio-EQ-cookbook biquad designers.
//
// Every function returns coefficients with a0 normalized to 1, ready for
// dsp/filter/biquad. Frequencies are in Hz. An invalid sample rate or a
// frequency outside (0, Nyquist) yields zero coefficients (silence); a
// non-positive or non-finite q falls back to 1/sqrt(2).
package design
