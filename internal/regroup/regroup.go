// Package regroup reshapes fine-grained detokenized segments into readable
// subtitle lines by solving a shortest-path problem over valid split
// positions, balancing line duration, length and reading speed.
//
// Ported from original_source/melops/src/segment.rs: the Node/SplitType
// model, the COMFORTABLE penalty weights, and the pre-split-then-DP
// structure are kept as-is; naming is translated to idiomatic Go.
package regroup

import (
	"math"
	"strings"
	"time"
)

// Segment is one detokenized text span with second-precision timestamps.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Subtitle is a final, regrouped record corresponding to one SRT cue.
type Subtitle struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Config holds the regrouper's thresholds and target values. Defaults match
// spec.md's "COMFORTABLE" preset exactly.
type Config struct {
	MaxGap         time.Duration
	TargetDuration time.Duration
	TargetChars    int
	MaxDuration    time.Duration
	MaxChars       int
	TargetCPS      float64
}

// DefaultConfig returns the COMFORTABLE reading-speed preset.
func DefaultConfig() Config {
	return Config{
		MaxGap:         1500 * time.Millisecond,
		TargetDuration: 3 * time.Second,
		TargetChars:    42,
		MaxDuration:    7 * time.Second,
		MaxChars:       84,
		TargetCPS:      22.0,
	}
}

type node struct {
	index       int // position in [0, n]; segments[index-1] precedes, segments[index] follows
	basePenalty float64
}

// Regroup partitions segments into subtitle lines. It first cuts at any
// inter-segment silence gap greater than cfg.MaxGap, regroups each resulting
// chunk independently, then concatenates and renumbers.
func Regroup(segments []Segment, cfg Config) []Subtitle {
	if len(segments) == 0 {
		return nil
	}

	chunks := presplit(segments, cfg.MaxGap)

	var subs []Subtitle
	for _, chunk := range chunks {
		subs = append(subs, regroupChunk(chunk, cfg)...)
	}

	for i := range subs {
		subs[i].Index = i + 1
	}
	return subs
}

// presplit cuts the segment sequence at any gap strictly greater than maxGap.
func presplit(segments []Segment, maxGap time.Duration) [][]Segment {
	var chunks [][]Segment
	start := 0
	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap > maxGap {
			chunks = append(chunks, segments[start:i])
			start = i
		}
	}
	chunks = append(chunks, segments[start:])
	return chunks
}

// regroupChunk runs the shortest-path DP over one pre-split chunk.
func regroupChunk(segments []Segment, cfg Config) []Subtitle {
	n := len(segments)
	if n == 0 {
		return nil
	}

	nodes := buildNodes(segments, cfg)

	dp := make([]float64, len(nodes))
	prev := make([]int, len(nodes))
	for i := range dp {
		dp[i] = math.Inf(1)
		prev[i] = -1
	}
	dp[0] = 0

	for j := 1; j < len(nodes); j++ {
		for i := 0; i < j; i++ {
			if math.IsInf(dp[i], 1) {
				continue
			}
			fromIdx, toIdx := nodes[i].index, nodes[j].index
			duration := segments[toIdx-1].End - segments[fromIdx].Start
			chars := charCount(segments[fromIdx:toIdx])

			if duration > cfg.MaxDuration || chars > cfg.MaxChars {
				continue
			}

			cost := nodes[j].basePenalty + segmentPenalty(duration, chars, cfg)
			if dp[i]+cost < dp[j] {
				dp[j] = dp[i] + cost
				prev[j] = i
			}
		}
	}

	last := len(nodes) - 1
	if math.IsInf(dp[last], 1) {
		// No admissible path reaches the chunk end (e.g. one over-long
		// segment with no valid interior split): matches segment.rs's
		// backtrack_path, whose parent-chain walk never starts and so
		// yields no subtitles for this chunk.
		return nil
	}

	var path []int
	for at := last; at != -1; at = prev[at] {
		path = append([]int{at}, path...)
	}

	var subs []Subtitle
	for k := 1; k < len(path); k++ {
		fromIdx := nodes[path[k-1]].index
		toIdx := nodes[path[k]].index
		subs = append(subs, mergeSegments(segments, fromIdx, toIdx))
	}
	return subs
}

// buildNodes enumerates valid split positions: the two chunk endpoints plus
// any interior position that is a sentence end, soft break, or word
// boundary. Mid-word positions are omitted — splitting there is forbidden.
func buildNodes(segments []Segment, cfg Config) []node {
	n := len(segments)
	nodes := []node{{index: 0, basePenalty: 0}}

	for k := 1; k < n; k++ {
		left := segments[k-1].Text
		right := segments[k].Text

		switch {
		case endsWithAny(left, ".!?"):
			nodes = append(nodes, node{index: k, basePenalty: 0})
		case endsWithAny(left, ",:;-"):
			nodes = append(nodes, node{index: k, basePenalty: 40})
		case strings.HasPrefix(right, " "):
			gap := segments[k].Start - segments[k-1].End
			gapSec := gap.Seconds()
			var cost float64
			if gapSec >= 1.5 {
				cost = 25
			} else {
				cost = 100 - 50*gapSec
			}
			nodes = append(nodes, node{index: k, basePenalty: cost})
		}
		// else: mid-word continuation, omitted.
	}

	nodes = append(nodes, node{index: n, basePenalty: 0})
	return nodes
}

func endsWithAny(s string, chars string) bool {
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return strings.IndexByte(chars, last) >= 0
}

// segmentPenalty combines quadratic duration deviation, linear character
// deviation and a one-sided exponential reading-speed penalty.
func segmentPenalty(duration time.Duration, chars int, cfg Config) float64 {
	d := duration.Seconds()
	c := float64(chars)
	target := cfg.TargetDuration.Seconds()

	durPenalty := math.Pow((d-target)*0.45, 2)
	charPenalty := math.Abs(c-float64(cfg.TargetChars)) * 0.5

	var cpsPenalty float64
	if d > 0 {
		cps := c/d - cfg.TargetCPS
		if cps > 0 {
			cpsPenalty = math.Pow(2, cps) * 4
		}
	}

	return durPenalty + charPenalty + cpsPenalty
}

func charCount(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += len(s.Text)
	}
	return total
}

// mergeSegments concatenates member texts, stripping the leading space of
// only the first member, and spans from the first member's Start to the
// last member's End.
func mergeSegments(segments []Segment, from, to int) Subtitle {
	var b strings.Builder
	for i := from; i < to; i++ {
		text := segments[i].Text
		if i == from {
			text = strings.TrimPrefix(text, " ")
		}
		b.WriteString(text)
	}
	return Subtitle{
		Start: segments[from].Start,
		End:   segments[to-1].End,
		Text:  b.String(),
	}
}
