package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tdt",
		Short: "Transcribe 16kHz mono WAV audio to time-stamped SRT subtitles",
	}

	root.AddCommand(newTranscribeCmd())
	root.AddCommand(newVersionCmd())

	return root
}
