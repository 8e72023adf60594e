// Package vocab loads a subword vocabulary and exposes a streaming
// detokenizer that maps SentencePiece word-boundary markers to spaces. Each
// token is resolved as soon as it is stepped; no lookahead is performed.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/askidmobile/tdt/internal/tdterr"
)

// wordBoundaryMarker is SentencePiece's word-initial glyph (U+2581).
const wordBoundaryMarker = "▁"

// Vocabulary is a flat, index-addressed list of subword surface strings,
// loaded from a tokenizer.json document.
//
// Grounded on ai/gigaam_rnnt.go's loadGigaAMRNNTVocab for the flat,
// id-indexed in-memory shape (a []string keyed by token id), generalized
// here to load the HF-tokenizers JSON format a TDT model ships instead of a
// flat vocabulary text file — blank_id and the duration head stay configured
// separately, outside the parsed vocabulary.
type Vocabulary struct {
	tokens []string
}

// tokenizerFile is the subset of a Hugging-Face tokenizers tokenizer.json
// document this package depends on: a model.vocab surface-string-to-id map,
// plus any added_tokens entries (e.g. special/control tokens) layered on top.
type tokenizerFile struct {
	Model struct {
		Vocab map[string]int `json:"vocab"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
	} `json:"added_tokens"`
}

// Load parses a tokenizer.json document and inverts its string->id vocab map
// into an id-indexed token slice.
func Load(path string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tdterr.ErrTokenizerLoad, err)
	}

	var tf tokenizerFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("%w: %v", tdterr.ErrTokenizerLoad, err)
	}
	if len(tf.Model.Vocab) == 0 {
		return nil, fmt.Errorf("%w: %s: model.vocab is empty", tdterr.ErrTokenizerLoad, path)
	}

	maxID := -1
	for _, id := range tf.Model.Vocab {
		if id > maxID {
			maxID = id
		}
	}
	for _, at := range tf.AddedTokens {
		if at.ID > maxID {
			maxID = at.ID
		}
	}

	tokens := make([]string, maxID+1)
	for surface, id := range tf.Model.Vocab {
		tokens[id] = surface
	}
	for _, at := range tf.AddedTokens {
		tokens[at.ID] = at.Content
	}

	return &Vocabulary{tokens: tokens}, nil
}

// Size returns V, the number of text tokens (excluding blank and duration
// slots).
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// BlankID returns the reserved blank token id, V (one past the last text
// token), per spec.md §3's vocabulary layout.
func (v *Vocabulary) BlankID() int {
	return len(v.tokens)
}

// surface returns the raw (un-substituted) surface string for a token id.
func (v *Vocabulary) surface(tokenID int) (string, bool) {
	if tokenID < 0 || tokenID >= len(v.tokens) {
		return "", false
	}
	return v.tokens[tokenID], true
}

// Detokenizer streams token ids into surface text.
//
// Grounded on original_source/melops-asr/src/models/tdt/asr_impl.rs's
// stream.step() usage and on the teacher's mergeRNNTTokensToWord (which
// concatenates a word's token texts using a boundary marker with no
// deferred lookahead). Each vocabulary entry here is already a complete,
// independently printable piece — the word-boundary marker only decides
// whether a leading space is inserted, so no token's resolution genuinely
// depends on a later one and Step resolves immediately. Step/Flush are
// still exposed as a pair (rather than a single decode(tokenID) function)
// to keep the door open for a richer vocabulary scheme that does need
// lookahead, per spec.md §9's streaming-detokenizer design note; Flush is
// a no-op for this implementation since nothing is ever buffered.
type Detokenizer struct {
	vocab *Vocabulary
}

// NewDetokenizer creates a Detokenizer bound to a Vocabulary. Create a fresh
// one per transcription call — stateless here, but kept as a distinct value
// per spec.md §5's "reset between transcriptions" rule so a future
// lookahead-requiring vocabulary scheme can add state without an API change.
func NewDetokenizer(v *Vocabulary) *Detokenizer {
	return &Detokenizer{vocab: v}
}

// Step resolves one token id to surface text, converting the word-boundary
// marker to a leading space. ok is false only for an out-of-range token id.
func (d *Detokenizer) Step(tokenID int) (string, bool) {
	surface, ok := d.vocab.surface(tokenID)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(surface, wordBoundaryMarker) {
		return " " + strings.TrimPrefix(surface, wordBoundaryMarker), true
	}
	return surface, true
}

// Flush is a no-op: this Detokenizer never buffers a pending piece.
func (d *Detokenizer) Flush() (string, bool) {
	return "", false
}
