package tdt

import (
	"fmt"

	"github.com/askidmobile/tdt/internal/tdterr"
)

// Detokenizer is the streaming lookahead decoder capability C6 drives. The
// concrete implementation lives in internal/vocab; this interface lets the
// segment builder stay agnostic of vocabulary representation, per spec.md
// §9's pipeline-polymorphism design note.
type Detokenizer interface {
	Step(tokenID int) (text string, ok bool)
	Flush() (text string, ok bool)
}

// BuildSegments drives a Detokenizer over a TokenDuration sequence, emitting
// a Segment for every resolved piece.
//
// The duration field is the joint's predicted frame-skip, not the token's
// acoustic extent (spec.md §9): End is computed as frame_to_sec(FrameIndex +
// Duration), which can occasionally overlap or leave a small gap with the
// next segment's Start. This is accepted behavior, matching
// original_source/melops-asr/src/models/tdt/asr_impl.rs's to_segments.
//
// A token id the detokenizer cannot resolve is a decode-stream failure, not
// something to drop silently: it aborts the whole call with ErrDetokenize.
func BuildSegments(items []TokenDuration, det Detokenizer, hopLength, sampleRate int) ([]Segment, error) {
	var segments []Segment

	for _, td := range items {
		text, ok := det.Step(td.TokenID)
		if !ok {
			return nil, fmt.Errorf("%w: token id %d at frame %d", tdterr.ErrDetokenize, td.TokenID, td.FrameIndex)
		}
		segments = append(segments, Segment{
			Text:  text,
			Start: FrameToDuration(td.FrameIndex, hopLength, sampleRate),
			End:   FrameToDuration(td.FrameIndex+td.Duration, hopLength, sampleRate),
		})
	}

	if text, ok := det.Flush(); ok && len(items) > 0 {
		last := items[len(items)-1]
		segments = append(segments, Segment{
			Text:  text,
			Start: FrameToDuration(last.FrameIndex, hopLength, sampleRate),
			End:   FrameToDuration(last.FrameIndex+last.Duration, hopLength, sampleRate),
		})
	}

	return segments, nil
}
