package chunk

import "testing"

func TestIterRanges_ShortAudioSingleRange(t *testing.T) {
	cfg := DefaultConfig()
	n := int(100 * cfg.DurationSec) // well under chunkSamples
	ranges := IterRanges(cfg, n)
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != n || ranges[0].OffsetSec != 0.0 {
		t.Fatalf("unexpected single range: %+v", ranges[0])
	}
}

func TestIterRanges_LongAudioSplitsWithOverlap(t *testing.T) {
	cfg := Config{DurationSec: 60.0, OverlapSec: 1.0, SampleRate: 16000}
	totalSec := 150.0
	n := int(totalSec * float64(cfg.SampleRate))

	ranges := IterRanges(cfg, n)
	wantOffsets := []float64{0, 59, 118}
	if len(ranges) != len(wantOffsets) {
		t.Fatalf("expected %d ranges, got %d", len(wantOffsets), len(ranges))
	}
	for i, want := range wantOffsets {
		if ranges[i].OffsetSec != want {
			t.Errorf("range %d: expected offset %v, got %v", i, want, ranges[i].OffsetSec)
		}
	}
}

func TestIterRanges_LastWindowNotPadded(t *testing.T) {
	cfg := Config{DurationSec: 10.0, OverlapSec: 1.0, SampleRate: 16000}
	n := int(15.5 * float64(cfg.SampleRate))
	ranges := IterRanges(cfg, n)
	last := ranges[len(ranges)-1]
	if last.End != n {
		t.Fatalf("expected last range to end exactly at n=%d, got %d", n, last.End)
	}
}

func TestEstimateCount_MatchesIterRanges(t *testing.T) {
	cfg := Config{DurationSec: 60.0, OverlapSec: 1.0, SampleRate: 16000}
	n := int(150.0 * float64(cfg.SampleRate))
	if got, want := EstimateCount(cfg, n), len(IterRanges(cfg, n)); got != want {
		t.Fatalf("EstimateCount=%d, IterRanges len=%d", got, want)
	}
}
