// Package srt renders regrouped subtitles as SubRip (.srt) text.
//
// Grounded on original_source/melops/src/srt.rs: to_subtitles,
// display_subtitles and preview_subtitles are ported directly, with the
// srtlib Timestamp type replaced by a plain hh:mm:ss,mmm formatter.
package srt

import (
	"fmt"
	"strings"
	"time"

	"github.com/askidmobile/tdt/internal/regroup"
)

// Write renders subtitles as complete SRT file content: each cue's index,
// "start --> end" timestamp line, and text, separated by a blank line.
func Write(subs []regroup.Subtitle) string {
	blocks := make([]string, len(subs))
	for i, s := range subs {
		blocks[i] = block(s)
	}
	return strings.Join(blocks, "\n")
}

func block(s regroup.Subtitle) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n", s.Index, formatTimestamp(s.Start), formatTimestamp(s.End), s.Text)
}

// formatTimestamp renders a duration as SRT's hh:mm:ss,mmm.
func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// Preview renders only the first headCount and last tailCount subtitles,
// joined by an ellipsis line, for quick terminal inspection of long
// transcripts. If the subtitle count doesn't exceed headCount+tailCount, the
// full set is rendered instead.
func Preview(subs []regroup.Subtitle, headCount, tailCount int) string {
	total := len(subs)
	if total <= headCount+tailCount {
		return Write(subs)
	}

	var blocks []string
	for _, s := range subs[:headCount] {
		blocks = append(blocks, block(s))
	}
	blocks = append(blocks, "...")
	for _, s := range subs[total-tailCount:] {
		blocks = append(blocks, block(s))
	}
	return strings.Join(blocks, "\n\n")
}
