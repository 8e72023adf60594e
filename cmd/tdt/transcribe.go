package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/askidmobile/tdt/internal/chunk"
	"github.com/askidmobile/tdt/internal/config"
	"github.com/askidmobile/tdt/internal/pipeline"
	"github.com/askidmobile/tdt/internal/srt"
)

func newTranscribeCmd() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "transcribe <wav-file>",
		Short: "Transcribe a 16kHz mono WAV file to an SRT subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd.Context(), args[0], cfg)
		},
	}

	config.RegisterFlags(cmd, &cfg)
	return cmd
}

func runTranscribe(parentCtx context.Context, inputPath string, cfg config.Config) error {
	logger := newLogger(cfg.LogLevel).With("run_id", uuid.NewString())

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, cancelling after the current chunk", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	outPath := cfg.OutPath
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".srt"
	}

	pcfg := pipeline.DefaultConfig(cfg.ModelDir, logger)
	pcfg.Chunk = chunk.Config{
		DurationSec: cfg.ChunkDurationSec,
		OverlapSec:  cfg.ChunkOverlapSec,
		SampleRate:  pcfg.Chunk.SampleRate,
	}

	p, err := pipeline.New(pcfg)
	if err != nil {
		return fmt.Errorf("loading pipeline: %w", err)
	}
	defer p.Close()

	logger.Info("transcribing", "input", inputPath)
	subs, err := p.TranscribeFile(ctx, inputPath, pcfg.Chunk, pcfg.Regroup)
	if err != nil {
		return fmt.Errorf("transcribing %s: %w", inputPath, err)
	}
	logger.Info("transcription complete", "subtitles", len(subs))

	if err := os.WriteFile(outPath, []byte(srt.Write(subs)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	logger.Info("wrote subtitles", "path", outPath)

	if cfg.Preview {
		fmt.Println(srt.Preview(subs, 3, 3))
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl}))
}
