package tdt

import (
	"log/slog"

	ort "github.com/yalue/onnxruntime_go"
)

// Model bundles the encoder and decoder_joint graphs needed to run one TDT
// decode pass over a chunk's features.
//
// Grounded on original_source/melops-asr/src/models/tdt/core.rs's TdtModel,
// which pairs the same two sessions (there: Session, here:
// *ort.DynamicAdvancedSession) behind a single owning type.
type Model struct {
	Encoder      *Encoder
	DecoderJoint *DecoderJoint
}

// LoadModel opens the encoder and decoder_joint ONNX graphs at the given
// paths. blankID and vocabV parameterize the decoder_joint's logit split.
func LoadModel(encoderPath, decoderJointPath string, opts *ort.SessionOptions, blankID, vocabV int, logger *slog.Logger) (*Model, error) {
	enc, err := NewEncoder(encoderPath, opts, logger)
	if err != nil {
		return nil, err
	}

	dec, err := NewDecoderJoint(decoderJointPath, opts, blankID, vocabV, logger)
	if err != nil {
		enc.Close()
		return nil, err
	}

	return &Model{Encoder: enc, DecoderJoint: dec}, nil
}

// Close releases both underlying sessions.
func (m *Model) Close() {
	if m.DecoderJoint != nil {
		m.DecoderJoint.Close()
	}
	if m.Encoder != nil {
		m.Encoder.Close()
	}
}

// Run extracts encoder embeddings for one chunk's mel features and greedily
// decodes the resulting token/duration sequence.
func (m *Model) Run(melFeatures [][]float32, nMels int) ([]TokenDuration, error) {
	enc, err := m.Encoder.Run(melFeatures, nMels)
	if err != nil {
		return nil, err
	}
	return m.DecoderJoint.GreedyDecode(enc)
}
