package tdt

import (
	"fmt"
	"log/slog"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/askidmobile/tdt/internal/tdterr"
)

// DecoderHiddenSize is the recurrent state width carried between non-blank
// emissions, per the (2, 1, 640) state tensor contract.
const DecoderHiddenSize = 640

// DecoderJoint wraps the fused decoder+joint ONNX graph. Unlike the
// teacher's RNNT engine (which runs a separate decoder session then a
// separate joint session per step), the TDT model's decoder and joint
// networks are exported as a single graph — this generalizes
// ai/gigaam_rnnt.go's per-step session-call idiom to one combined call.
type DecoderJoint struct {
	session *ort.DynamicAdvancedSession
	logger  *slog.Logger
	blankID int
	vocabV  int
}

// NewDecoderJoint creates a DecoderJoint session from an ONNX model file.
// blankID and vocabV (the text-vocabulary size V, i.e. blankID itself) split
// the joint's flat logit vector into text and duration segments.
func NewDecoderJoint(path string, opts *ort.SessionOptions, blankID, vocabV int, logger *slog.Logger) (*DecoderJoint, error) {
	inputInfo, outputInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("decoder_joint graph info: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(path, extractNames(inputInfo), extractNames(outputInfo), opts)
	if err != nil {
		return nil, fmt.Errorf("decoder_joint session: %w", err)
	}

	return &DecoderJoint{session: session, logger: logger, blankID: blankID, vocabV: vocabV}, nil
}

// Close releases the decoder_joint session.
func (d *DecoderJoint) Close() {
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
}

// decodeState carries the recurrent LSTM state and the last-emitted target
// label across label-loop iterations, per spec.md's "small, fixed-schema
// decode context" design note.
type decodeState struct {
	h, c        []float32
	lastEmitted int32
}

func newDecodeState(blankID int) decodeState {
	return decodeState{
		h:           make([]float32, 2*DecoderHiddenSize),
		c:           make([]float32, 2*DecoderHiddenSize),
		lastEmitted: int32(blankID),
	}
}

// step runs one joint invocation at the given encoder frame and returns the
// argmax token id, argmax duration index and the (possibly unchanged) state.
func (d *DecoderJoint) step(encFrame []float32, st decodeState) (tokenID, durationIdx int, newState decodeState, err error) {
	encShape := ort.NewShape(1, int64(len(encFrame)), 1)
	encTensor, err := ort.NewTensor(encShape, encFrame)
	if err != nil {
		return 0, 0, st, fmt.Errorf("encoder frame tensor: %w", err)
	}
	defer encTensor.Destroy()

	targetShape := ort.NewShape(1, 1)
	targetTensor, err := ort.NewTensor(targetShape, []int32{st.lastEmitted})
	if err != nil {
		return 0, 0, st, fmt.Errorf("targets tensor: %w", err)
	}
	defer targetTensor.Destroy()

	targetLenShape := ort.NewShape(1)
	targetLenTensor, err := ort.NewTensor(targetLenShape, []int32{1})
	if err != nil {
		return 0, 0, st, fmt.Errorf("target_length tensor: %w", err)
	}
	defer targetLenTensor.Destroy()

	stateShape := ort.NewShape(2, 1, int64(DecoderHiddenSize))
	hTensor, err := ort.NewTensor(stateShape, st.h)
	if err != nil {
		return 0, 0, st, fmt.Errorf("input_states_1 tensor: %w", err)
	}
	defer hTensor.Destroy()

	cTensor, err := ort.NewTensor(stateShape, st.c)
	if err != nil {
		return 0, 0, st, fmt.Errorf("input_states_2 tensor: %w", err)
	}
	defer cTensor.Destroy()

	outputs := make([]ort.Value, 3)
	inputs := []ort.Value{encTensor, targetTensor, targetLenTensor, hTensor, cTensor}
	if err := d.session.Run(inputs, outputs); err != nil {
		return 0, 0, st, fmt.Errorf("%w: %v", tdterr.ErrGraphExec, err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if outputs[0] == nil {
		return 0, 0, st, fmt.Errorf("%w: outputs", tdterr.ErrMissingOutput)
	}
	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, 0, st, fmt.Errorf("%w: outputs dtype", tdterr.ErrShapeMismatch)
	}
	logits := logitsTensor.GetData()

	textLogits := logits[:d.vocabV+1]
	durationLogits := logits[d.vocabV+1:]

	tokenID = argmax(textLogits)
	durationIdx = argmax(durationLogits)

	if durationIdx < 0 || durationIdx >= len(Durations) {
		return 0, 0, st, fmt.Errorf("%w: index %d, max %d", tdterr.ErrDurationIndexOutOfBounds, durationIdx, len(Durations)-1)
	}

	newState = st
	if tokenID != d.blankID {
		if outputs[1] == nil || outputs[2] == nil {
			return 0, 0, st, fmt.Errorf("%w: output_states_1/2", tdterr.ErrMissingOutput)
		}
		newH, ok := outputs[1].(*ort.Tensor[float32])
		if !ok {
			return 0, 0, st, fmt.Errorf("%w: output_states_1 dtype", tdterr.ErrShapeMismatch)
		}
		newC, ok := outputs[2].(*ort.Tensor[float32])
		if !ok {
			return 0, 0, st, fmt.Errorf("%w: output_states_2 dtype", tdterr.ErrShapeMismatch)
		}
		newState.h = append([]float32(nil), newH.GetData()...)
		newState.c = append([]float32(nil), newC.GetData()...)
		newState.lastEmitted = int32(tokenID)
	}

	return tokenID, durationIdx, newState, nil
}

// argmax returns the smallest index achieving the maximum value (stable
// tie-break, per spec.md §4.4).
func argmax(xs []float32) int {
	best := 0
	bestVal := xs[0]
	for i := 1; i < len(xs); i++ {
		if xs[i] > bestVal {
			bestVal = xs[i]
			best = i
		}
	}
	return best
}

// GreedyDecode runs the label-looping TDT decode loop over one chunk's
// encoder output, producing the sequence of non-blank TokenDurations.
//
// Loop bound resolved to frame < ValidLen-1, following the refactored
// original_source/melops-asr/src/models/tdt/inference.rs over the older
// flat tdt.rs (which used frame < ValidLen) — see DESIGN.md open question 1.
func (d *DecoderJoint) GreedyDecode(enc EncoderOutput) ([]TokenDuration, error) {
	var out []TokenDuration
	st := newDecodeState(d.blankID)
	frame := 0

	for frame < enc.ValidLen-1 {
		encFrame := enc.FrameAt(frame)
		advanced := false

		for sym := 0; sym < MaxSymbolsPerStep; sym++ {
			tokenID, durationIdx, newState, err := d.step(encFrame, st)
			if err != nil {
				return nil, err
			}

			skip := Durations[durationIdx]

			if tokenID != d.blankID {
				out = append(out, TokenDuration{TokenID: tokenID, FrameIndex: frame, Duration: skip})
				st = newState
			}

			next := frame + skip
			if next > enc.ValidLen {
				next = enc.ValidLen
			}
			frame = next

			if skip > 0 {
				advanced = true
				break
			}
		}

		if !advanced {
			d.logger.Debug("label loop exhausted without frame advance, forcing progress", "frame", frame)
			frame++
		}
	}

	return out, nil
}
