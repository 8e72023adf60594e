// Package tdterr collects the sentinel errors the TDT pipeline can return.
//
// Every component fails fast: the first error aborts the whole transcription
// call, there is no retry and no partial-success mode. Callers compare with
// errors.Is since most of these are wrapped with file-, chunk- or
// frame-specific context via fmt.Errorf("...: %w", err).
package tdterr

import "errors"

// Audio format errors, surfaced at the WAV-reading boundary.
var (
	ErrUnsupportedSampleRate   = errors.New("unsupported sample rate: only 16000 Hz is accepted")
	ErrUnsupportedChannelCount = errors.New("unsupported channel count: only mono or stereo is accepted")
	ErrUnreadableAudio         = errors.New("unreadable WAV audio")
)

// Model I/O errors, surfaced while resolving or loading model artifacts.
var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrTokenizerLoad    = errors.New("failed to load tokenizer vocabulary")
)

// Graph execution errors, surfaced per chunk during encoder/joint inference.
var (
	ErrMissingOutput = errors.New("graph execution: named output missing")
	ErrShapeMismatch = errors.New("graph execution: tensor shape mismatch")
	ErrGraphExec     = errors.New("graph execution failed")
)

// Decode-loop errors.
var (
	ErrDurationIndexOutOfBounds = errors.New("decode: duration index out of bounds")
)

// Detokenization errors.
var (
	ErrDetokenize = errors.New("detokenize: streaming decode failed")
)

// ErrNotImplemented marks an identified extension point (streaming
// transcription) that exists on the interface but has no implementation yet.
var ErrNotImplemented = errors.New("not implemented")
