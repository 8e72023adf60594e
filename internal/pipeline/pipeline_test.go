package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/askidmobile/tdt/internal/tdt"
	"github.com/askidmobile/tdt/internal/tdterr"
)

func TestDefaultConfig_PopulatesSubConfigs(t *testing.T) {
	cfg := DefaultConfig("/models", slog.Default())
	if cfg.ModelDir != "/models" {
		t.Errorf("ModelDir = %q", cfg.ModelDir)
	}
	if cfg.Chunk.SampleRate != 16000 {
		t.Errorf("Chunk.SampleRate = %d, want 16000", cfg.Chunk.SampleRate)
	}
	if cfg.Mel.NMels != 128 {
		t.Errorf("Mel.NMels = %d, want 128", cfg.Mel.NMels)
	}
	if cfg.Regroup.TargetChars != 42 {
		t.Errorf("Regroup.TargetChars = %d, want 42", cfg.Regroup.TargetChars)
	}
}

func TestToRegroupSegments_PreservesFields(t *testing.T) {
	in := []tdt.Segment{
		{Text: "hi", Start: time.Second, End: 2 * time.Second},
	}
	out := toRegroupSegments(in)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].Text != "hi" || out[0].Start != time.Second || out[0].End != 2*time.Second {
		t.Errorf("conversion mismatch: %+v", out[0])
	}
}

func TestTranscribeStream_NotImplemented(t *testing.T) {
	p := &Pipeline{}
	_, err := p.TranscribeStream(context.Background(), nil)
	if !errors.Is(err, tdterr.ErrNotImplemented) {
		t.Errorf("err = %v, want ErrNotImplemented", err)
	}
}

func TestTranscribeToTokens_RespectsCancelledContext(t *testing.T) {
	p := &Pipeline{cfg: DefaultConfig("/models", slog.Default())}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.transcribeToTokens(ctx, make([]float32, 16000), p.cfg.Chunk)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
