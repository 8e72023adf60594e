// Package chunk partitions a long sample stream into overlapping windows so
// that a fixed-size encoder/decoder pair can process audio of unbounded
// length.
package chunk

// Config holds the chunking policy. Defaults follow spec.md, not the 60s/1s
// default found in the Rust chunk.rs this package is grounded on — spec.md
// is authoritative for this implementation.
type Config struct {
	DurationSec float64
	OverlapSec  float64
	SampleRate  int
}

// DefaultConfig returns the 240s-window/1s-overlap default.
func DefaultConfig() Config {
	return Config{
		DurationSec: 240.0,
		OverlapSec:  1.0,
		SampleRate:  16000,
	}
}

// Range is a half-open sample interval [Start, End) with its time offset in
// seconds from the start of the audio.
type Range struct {
	Start     int
	End       int
	OffsetSec float64
}

// chunkSamples returns the window size in samples.
func (c Config) chunkSamples() int {
	return int(c.DurationSec * float64(c.SampleRate))
}

// stepSamples returns the stride between consecutive window starts.
func (c Config) stepSamples() int {
	step := c.chunkSamples() - int(c.OverlapSec*float64(c.SampleRate))
	if step < 1 {
		step = 1
	}
	return step
}

// IterRanges returns the chunk ranges covering n samples. If n fits within a
// single chunk, exactly one range covering all of it is returned.
func IterRanges(cfg Config, n int) []Range {
	chunkSamples := cfg.chunkSamples()
	if n <= chunkSamples {
		return []Range{{Start: 0, End: n, OffsetSec: 0.0}}
	}

	step := cfg.stepSamples()
	sr := float64(cfg.SampleRate)

	var ranges []Range
	for start := 0; start < n; start += step {
		end := start + chunkSamples
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{
			Start:     start,
			End:       end,
			OffsetSec: float64(start) / sr,
		})
	}
	return ranges
}

// EstimateCount returns how many ranges IterRanges would produce for n
// samples, without materializing them.
func EstimateCount(cfg Config, n int) int {
	chunkSamples := cfg.chunkSamples()
	if n <= chunkSamples {
		return 1
	}
	step := cfg.stepSamples()
	count := 0
	for start := 0; start < n; start += step {
		count++
	}
	return count
}
