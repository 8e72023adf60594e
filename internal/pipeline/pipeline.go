// Package pipeline wires the acoustic front-end, TDT encoder/decoder,
// vocabulary and subtitle regrouper into one transcription entry point.
//
// Grounded on ai/pipeline.go's AudioPipeline: a single owning struct behind
// a sync.RWMutex, constructed once and driven by a handful of top-level
// Transcribe* methods, with a Close() that releases every owned resource.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/askidmobile/tdt/internal/chunk"
	"github.com/askidmobile/tdt/internal/features"
	"github.com/askidmobile/tdt/internal/onnxrt"
	"github.com/askidmobile/tdt/internal/regroup"
	"github.com/askidmobile/tdt/internal/repository"
	"github.com/askidmobile/tdt/internal/tdt"
	"github.com/askidmobile/tdt/internal/tdterr"
	"github.com/askidmobile/tdt/internal/vocab"
	"github.com/askidmobile/tdt/internal/wavio"
)

// Config selects the model artifacts and tuning knobs for a Pipeline.
type Config struct {
	ModelDir string
	Mel      features.Config
	Chunk    chunk.Config
	Regroup  regroup.Config
	Logger   *slog.Logger
}

// DefaultConfig returns a Config with every sub-config at its package
// default; ModelDir and Logger must still be set by the caller.
func DefaultConfig(modelDir string, logger *slog.Logger) Config {
	return Config{
		ModelDir: modelDir,
		Mel:      features.DefaultConfig(),
		Chunk:    chunk.DefaultConfig(),
		Regroup:  regroup.DefaultConfig(),
		Logger:   logger,
	}
}

// Pipeline runs WAV audio through the acoustic front-end, the TDT decode
// loop and subtitle regrouping.
type Pipeline struct {
	mu sync.RWMutex

	model     *tdt.Model
	extractor *features.Extractor
	vocab     *vocab.Vocabulary

	cfg Config
}

// New loads model artifacts from cfg.ModelDir and constructs a Pipeline
// ready to transcribe.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if err := onnxrt.Ensure(cfg.Logger); err != nil {
		return nil, err
	}

	var repo repository.Repository = repository.NewLocalDir(cfg.ModelDir)

	vocabPath, err := repo.Resolve(repository.TokenizerFilename)
	if err != nil {
		return nil, err
	}
	vocabulary, err := vocab.Load(vocabPath)
	if err != nil {
		return nil, err
	}

	encoderPath, err := repo.ResolveAny(repository.EncoderCandidates...)
	if err != nil {
		return nil, err
	}
	decoderJointPath, err := repo.ResolveAny(repository.DecoderJointCandidates...)
	if err != nil {
		return nil, err
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx session options: %w", err)
	}

	model, err := tdt.LoadModel(encoderPath, decoderJointPath, sessionOpts, vocabulary.BlankID(), vocabulary.Size(), cfg.Logger)
	if err != nil {
		return nil, err
	}

	extractor := features.NewExtractor(cfg.Mel)

	cfg.Logger.Info("pipeline ready", "model_dir", cfg.ModelDir, "vocab_size", vocabulary.Size())

	return &Pipeline{model: model, extractor: extractor, vocab: vocabulary, cfg: cfg}, nil
}

// Close releases the underlying ONNX sessions.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model != nil {
		p.model.Close()
		p.model = nil
	}
}

// TranscribeFile reads a 16kHz mono WAV file, runs it through TranscribeChunked
// using cfg's chunk plan, and regroups the resulting segments into subtitle
// cues using regroupCfg. This is the top-level entry point the CLI calls.
func (p *Pipeline) TranscribeFile(ctx context.Context, path string, cfg chunk.Config, regroupCfg regroup.Config) ([]regroup.Subtitle, error) {
	audio, err := wavio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	segments, err := p.TranscribeChunked(ctx, audio.Samples, cfg)
	if err != nil {
		return nil, err
	}

	return regroup.Regroup(toRegroupSegments(segments), regroupCfg), nil
}

// Transcribe runs the full pipeline over raw float32 PCM samples in a single
// pass, with no chunking: feature extraction, encoder/decoder inference and
// segment construction directly over the whole sample buffer. Intended for
// audio short enough to fit in one encoder/decoder invocation; long audio
// should use TranscribeChunked instead.
func (p *Pipeline) Transcribe(ctx context.Context, samples []float32) ([]tdt.Segment, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	melFeatures := p.extractor.Extract(samples)
	if melFeatures == nil {
		return nil, nil
	}

	items, err := p.model.Run(melFeatures, p.cfg.Mel.NMels)
	if err != nil {
		return nil, err
	}

	det := vocab.NewDetokenizer(p.vocab)
	return tdt.BuildSegments(items, det, p.cfg.Mel.HopLength, p.cfg.Mel.SampleRate)
}

// TranscribeChunked partitions samples per cfg, runs feature extraction and
// decode over each chunk, frame-offsets and merges the per-chunk token
// output (C5), then builds segments (C6). It does not regroup into
// subtitles — see TranscribeFile for the composed entry point. ctx is
// checked between chunks so a long transcription can be cancelled without
// losing the sessions already open.
func (p *Pipeline) TranscribeChunked(ctx context.Context, samples []float32, cfg chunk.Config) ([]tdt.Segment, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	items, err := p.transcribeToTokens(ctx, samples, cfg)
	if err != nil {
		return nil, err
	}

	det := vocab.NewDetokenizer(p.vocab)
	return tdt.BuildSegments(items, det, p.cfg.Mel.HopLength, p.cfg.Mel.SampleRate)
}

// TranscribeStream is not implemented and returns ErrNotImplemented: this
// pipeline transcribes only complete sample buffers (Transcribe,
// TranscribeChunked) or WAV files (TranscribeFile).
func (p *Pipeline) TranscribeStream(ctx context.Context, samples <-chan []float32) (<-chan regroup.Subtitle, error) {
	return nil, tdterr.ErrNotImplemented
}

func (p *Pipeline) transcribeToTokens(ctx context.Context, samples []float32, cfg chunk.Config) ([]tdt.TokenDuration, error) {
	ranges := chunk.IterRanges(cfg, len(samples))

	var perChunk [][]tdt.TokenDuration
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.cfg.Logger.Debug("decoding chunk", "index", i,
			"duration_sec", float64(r.End-r.Start)/float64(cfg.SampleRate), "offset_sec", r.OffsetSec)

		melFeatures := p.extractor.Extract(samples[r.Start:r.End])
		if melFeatures == nil {
			continue
		}

		items, err := p.model.Run(melFeatures, p.cfg.Mel.NMels)
		if err != nil {
			return nil, err
		}

		frameOffset := tdt.ChunkFrameOffset(r.OffsetSec, p.cfg.Mel.SampleRate, p.cfg.Mel.HopLength)
		perChunk = append(perChunk, tdt.OffsetOutputs(items, frameOffset))
	}

	return tdt.MergeOutputs(perChunk), nil
}

func toRegroupSegments(segments []tdt.Segment) []regroup.Segment {
	out := make([]regroup.Segment, len(segments))
	for i, s := range segments {
		out[i] = regroup.Segment{Text: s.Text, Start: s.Start, End: s.End}
	}
	return out
}
