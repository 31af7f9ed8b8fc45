// Package matrix implements a stereo multi-mode biquad filter.
//
// A [Bank] owns one [Unit] per channel and a single parameter snapshot
// shared by all of them. Control goroutines publish new [Parameters]
// through [Bank.SetParameters]; the audio goroutine picks up the latest
// snapshot at the start of each block in [Bank.ProcessBlock]. The handoff
// is a lock-free triple buffer, so the audio path never blocks, allocates
// or observes a half-written snapshot.
//
// Seven response types are supported (see [Mode]). Coefficients follow the
// RBJ audio-EQ cookbook and are recomputed only when a parameter actually
// changes.
package matrix
