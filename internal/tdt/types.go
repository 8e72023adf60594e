// Package tdt implements the Token-and-Duration Transducer encoder runner,
// greedy decoder, chunk merger and segment builder — the inference core of
// the transcription engine.
package tdt

import "time"

// SubsamplingFactor is the encoder's temporal subsampling relative to the
// mel frame rate: one encoder frame spans SubsamplingFactor mel hops.
const SubsamplingFactor = 8

// MaxSymbolsPerStep bounds the label-looping inner loop: at most this many
// non-blank tokens may be emitted at a single encoder frame before the
// decoder is forced to advance.
const MaxSymbolsPerStep = 10

// Durations is the TDT duration head's fixed output alphabet: the frame-skip
// the joint network may choose at each step.
var Durations = []int{0, 1, 2, 3, 4}

// TokenDuration is one decoded unit: a non-blank token together with the
// encoder frame it was emitted at and the frame-skip duration the joint
// network chose there. Duration is the joint's predicted skip, not
// necessarily the token's acoustic extent (see segment builder doc comment).
type TokenDuration struct {
	TokenID    int
	FrameIndex int
	Duration   int
}

// Segment is a detokenized span of text with second-precision timestamps.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// FrameToDuration converts an encoder frame index to a time.Duration offset.
func FrameToDuration(frame int, hopLength, sampleRate int) time.Duration {
	secs := float64(frame) * float64(SubsamplingFactor) * float64(hopLength) / float64(sampleRate)
	return time.Duration(secs * float64(time.Second))
}

// DurationToFrame converts a time.Duration offset back to an encoder frame
// index. It is the exact inverse of FrameToDuration when secs is a multiple
// of the frame period (SubsamplingFactor*hopLength/sampleRate).
func DurationToFrame(d time.Duration, hopLength, sampleRate int) int {
	framePeriod := float64(SubsamplingFactor) * float64(hopLength) / float64(sampleRate)
	return int(d.Seconds()/framePeriod + 0.5)
}
