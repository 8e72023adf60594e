package tdt

// OffsetOutputs shifts every TokenDuration's FrameIndex by frameOffset, for
// stitching a chunk's decode output onto the shared frame axis.
func OffsetOutputs(items []TokenDuration, frameOffset int) []TokenDuration {
	out := make([]TokenDuration, len(items))
	for i, td := range items {
		out[i] = td
		out[i].FrameIndex += frameOffset
	}
	return out
}

// ChunkFrameOffset converts a chunk's time offset (seconds, from chunk.Range)
// to an encoder-frame offset: F_k = round(offsetSec * sr / (hop * subsampling)).
func ChunkFrameOffset(offsetSec float64, sampleRate, hopLength int) int {
	return int(offsetSec*float64(sampleRate)/(float64(hopLength)*float64(SubsamplingFactor)) + 0.5)
}

// mergeTwo stitches two already frame-offset chunks, A followed by B.
//
// Ported from original_source/melops-asr/src/models/tdt/merge.rs: the
// dedup cutoff is A's last frame_index + duration; entries of B before that
// cutoff are dropped as overlap duplicates. No token-identity comparison is
// performed (see spec.md §9's documented failure mode).
func mergeTwo(a, b []TokenDuration) []TokenDuration {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}

	last := a[len(a)-1]
	cutoff := last.FrameIndex + last.Duration

	start := len(b)
	for i, td := range b {
		if td.FrameIndex >= cutoff {
			start = i
			break
		}
	}

	out := make([]TokenDuration, 0, len(a)+len(b)-start)
	out = append(out, a...)
	out = append(out, b[start:]...)
	return out
}

// MergeOutputs folds mergeTwo across a sequence of per-chunk outputs, in
// order. Associative when per-chunk outputs are already offset to a common
// frame reference (spec.md invariant 5).
func MergeOutputs(chunks [][]TokenDuration) []TokenDuration {
	var acc []TokenDuration
	for _, c := range chunks {
		acc = mergeTwo(acc, c)
	}
	return acc
}
