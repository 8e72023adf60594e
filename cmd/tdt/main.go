// Command tdt transcribes 16kHz mono WAV audio into time-stamped SRT
// subtitles using a Token-and-Duration Transducer ONNX model pair.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
