// Package config binds the transcribe command's flags to a plain struct.
//
// Grounded on the teacher's internal/config/config.go (a flat struct of
// flag-parsed fields), rebuilt on cobra/pflag's Command.Flags() instead of
// the standard library's flag package per DESIGN.md open question 5.
package config

import "github.com/spf13/cobra"

// Config holds every user-tunable transcription setting.
type Config struct {
	ModelDir         string
	OutPath          string
	ChunkDurationSec float64
	ChunkOverlapSec  float64
	Preview          bool
	LogLevel         string
}

// RegisterFlags binds cmd's flags into cfg, using spec.md's defaults.
func RegisterFlags(cmd *cobra.Command, cfg *Config) {
	cmd.Flags().StringVar(&cfg.ModelDir, "model-dir", "", "directory containing encoder/decoder_joint/vocab artifacts (required)")
	cmd.Flags().StringVar(&cfg.OutPath, "out", "", "output .srt path (default: <input>.srt)")
	cmd.Flags().Float64Var(&cfg.ChunkDurationSec, "chunk-duration", 240.0, "chunk window length in seconds")
	cmd.Flags().Float64Var(&cfg.ChunkOverlapSec, "chunk-overlap", 1.0, "chunk overlap in seconds")
	cmd.Flags().BoolVar(&cfg.Preview, "preview", false, "print a head/tail preview of the subtitles to stdout")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	_ = cmd.MarkFlagRequired("model-dir")
}
