package tdt

import (
	"fmt"
	"log/slog"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/askidmobile/tdt/internal/tdterr"
)

// EncoderOutput holds the acoustic embeddings the encoder graph produced for
// one chunk, plus the valid (unpadded) length of the time axis.
type EncoderOutput struct {
	// Data is the flattened (1, D, T') tensor in row-major D-major order,
	// i.e. Data[d*T'+t] is the embedding for channel d at frame t.
	Data      []float32
	Dim       int // D
	TimeSteps int // T' (padded length)
	ValidLen  int // T_valid <= T'
}

// Encoder wraps the TDT encoder ONNX graph.
//
// Grounded on ai/gigaam_rnnt.go's encoder session construction and tensor
// marshaling (ort.NewDynamicAdvancedSession, ort.NewTensor, ort.NewShape);
// generalized here to also consume the encoder's second output
// (encoded_lengths), which the teacher's RNNT encoder call site ignores.
type Encoder struct {
	session *ort.DynamicAdvancedSession
	logger  *slog.Logger
}

// NewEncoder creates an Encoder session from an ONNX model file.
func NewEncoder(path string, opts *ort.SessionOptions, logger *slog.Logger) (*Encoder, error) {
	inputInfo, outputInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("encoder graph info: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(path, extractNames(inputInfo), extractNames(outputInfo), opts)
	if err != nil {
		return nil, fmt.Errorf("encoder session: %w", err)
	}

	return &Encoder{session: session, logger: logger}, nil
}

// Run executes the encoder on a (T, NMels) feature matrix, transposing it
// into the encoder's expected (1, NMels, T) layout.
func (e *Encoder) Run(features [][]float32, nMels int) (EncoderOutput, error) {
	t := len(features)
	flat := make([]float32, nMels*t)
	for i := 0; i < nMels; i++ {
		for j := 0; j < t; j++ {
			flat[i*t+j] = features[j][i]
		}
	}

	inputShape := ort.NewShape(1, int64(nMels), int64(t))
	inputTensor, err := ort.NewTensor(inputShape, flat)
	if err != nil {
		return EncoderOutput{}, fmt.Errorf("encoder input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	lengthShape := ort.NewShape(1)
	lengthTensor, err := ort.NewTensor(lengthShape, []int64{int64(t)})
	if err != nil {
		return EncoderOutput{}, fmt.Errorf("encoder length tensor: %w", err)
	}
	defer lengthTensor.Destroy()

	outputs := make([]ort.Value, 2)
	if err := e.session.Run([]ort.Value{inputTensor, lengthTensor}, outputs); err != nil {
		return EncoderOutput{}, fmt.Errorf("%w: %v", tdterr.ErrGraphExec, err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if outputs[0] == nil || outputs[1] == nil {
		return EncoderOutput{}, fmt.Errorf("%w: encoder outputs/encoded_lengths", tdterr.ErrMissingOutput)
	}

	embTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return EncoderOutput{}, fmt.Errorf("%w: encoder outputs dtype", tdterr.ErrShapeMismatch)
	}
	lenTensor, ok := outputs[1].(*ort.Tensor[int64])
	if !ok {
		return EncoderOutput{}, fmt.Errorf("%w: encoded_lengths dtype", tdterr.ErrShapeMismatch)
	}

	shape := embTensor.GetShape()
	if len(shape) != 3 {
		return EncoderOutput{}, fmt.Errorf("%w: encoder outputs rank", tdterr.ErrShapeMismatch)
	}

	dim := int(shape[1])
	timeSteps := int(shape[2])
	data := embTensor.GetData()
	out := make([]float32, len(data))
	copy(out, data)

	validLen := int(lenTensor.GetData()[0])

	e.logger.Debug("encoder run complete", "dim", dim, "time_steps", timeSteps, "valid_len", validLen)

	return EncoderOutput{Data: out, Dim: dim, TimeSteps: timeSteps, ValidLen: validLen}, nil
}

// Close releases the encoder session.
func (e *Encoder) Close() {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
}

// FrameAt returns the embedding slice for a single encoder frame.
func (o EncoderOutput) FrameAt(frame int) []float32 {
	out := make([]float32, o.Dim)
	for d := 0; d < o.Dim; d++ {
		out[d] = o.Data[d*o.TimeSteps+frame]
	}
	return out
}

func extractNames(info []ort.InputOutputInfo) []string {
	names := make([]string, len(info))
	for i, inf := range info {
		names[i] = inf.Name
	}
	return names
}
