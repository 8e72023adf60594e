package features

import "testing"

func TestMelFilterbank_Shape(t *testing.T) {
	filters := createMelFilterbank(512, 128, 16000)
	if len(filters) != 128 {
		t.Fatalf("expected 128 mel filters, got %d", len(filters))
	}
	expectedBins := 512/2 + 1
	for i, f := range filters {
		if len(f) != expectedBins {
			t.Errorf("filter %d: expected %d bins, got %d", i, expectedBins, len(f))
		}
	}
}

func TestExtract_ShapeMatchesFormula(t *testing.T) {
	cfg := DefaultConfig()
	e := NewExtractor(cfg)

	n := 1600 // 100ms of audio
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.1
	}

	feats := e.Extract(samples)
	want := (n-cfg.WinLength)/cfg.HopLength + 1
	if len(feats) != want {
		t.Fatalf("expected %d frames, got %d", want, len(feats))
	}
	for _, row := range feats {
		if len(row) != cfg.NMels {
			t.Fatalf("expected %d mel bins per frame, got %d", cfg.NMels, len(row))
		}
	}
}

func TestExtract_ShortAudioYieldsNoFrames(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	feats := e.Extract(make([]float32, 10))
	if feats != nil {
		t.Fatalf("expected nil features for short audio, got %d frames", len(feats))
	}
}

func TestExtract_NormalizedColumnsHaveZeroMean(t *testing.T) {
	cfg := DefaultConfig()
	e := NewExtractor(cfg)

	n := 16000
	samples := make([]float32, n)
	for i := range samples {
		if i%7 == 0 {
			samples[i] = 0.3
		} else {
			samples[i] = -0.05
		}
	}

	feats := e.Extract(samples)
	if len(feats) == 0 {
		t.Fatal("expected frames for 1s of audio")
	}

	for m := 0; m < cfg.NMels; m++ {
		var mean float64
		for _, row := range feats {
			mean += float64(row[m])
		}
		mean /= float64(len(feats))
		if mean > 1e-3 || mean < -1e-3 {
			t.Errorf("mel bin %d: expected ~zero mean after normalization, got %v", m, mean)
		}
	}
}
