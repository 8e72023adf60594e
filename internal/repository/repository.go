// Package repository resolves model artifact file names against a local
// model directory.
//
// Grounded on original_source/melops-asr/src/types.rs's ModelRepo::resolve
// and resolve_any. DESIGN.md's open-question resolution #7 scopes this to
// the Path variant only — no Hub/cache download backend is implemented.
package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/askidmobile/tdt/internal/tdterr"
)

// Repository resolves model artifact names to file paths. The original
// Rust ModelRepo additionally resolves against a Hugging-Face-Hub cache/API
// backend (DESIGN.md open-question resolution #7); this interface leaves
// room for that second implementation without LocalDirRepository's callers
// needing to change.
type Repository interface {
	Resolve(name string) (string, error)
	ResolveAny(candidates ...string) (string, error)
}

// LocalDirRepository resolves artifact names to file paths under a single
// local directory.
type LocalDirRepository struct {
	dir string
}

// NewLocalDir creates a LocalDirRepository rooted at dir.
func NewLocalDir(dir string) *LocalDirRepository {
	return &LocalDirRepository{dir: dir}
}

// Resolve returns the repository directory joined with name (absolute only
// if the directory is), erroring if the file does not exist.
func (r *LocalDirRepository) Resolve(name string) (string, error) {
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", tdterr.ErrArtifactNotFound, path)
	}
	return path, nil
}

// ResolveAny tries each candidate name in order and returns the path of the
// first one present.
func (r *LocalDirRepository) ResolveAny(candidates ...string) (string, error) {
	for _, name := range candidates {
		if path, err := r.Resolve(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v found under %s", tdterr.ErrArtifactNotFound, candidates, r.dir)
}

var _ Repository = (*LocalDirRepository)(nil)

// Candidate filename lists, in preference order, per spec.md §6.
var (
	EncoderCandidates      = []string{"encoder-model.onnx", "encoder.onnx", "encoder-model.int8.onnx"}
	DecoderJointCandidates = []string{"decoder_joint-model.onnx", "decoder_joint.onnx", "decoder_joint-model.int8.onnx"}
)

// TokenizerFilename is the single tokenizer artifact name spec.md §6
// mandates; the original Rust ModelRepo resolves it with a single Resolve
// call (repo.resolve("tokenizer.json")), not a candidate list.
const TokenizerFilename = "tokenizer.json"
