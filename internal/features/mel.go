// Package features extracts log-mel-spectrogram features from raw PCM
// samples for the TDT encoder.
package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Config fixes the TDT feature pipeline's acoustic parameters.
type Config struct {
	SampleRate   int
	NMels        int
	HopLength    int
	WinLength    int
	NFFT         int
	Preemphasis  float64
	LogFloor     float64
	NormEpsilon  float64
}

// DefaultConfig returns the configuration the TDT acoustic front-end was
// trained with: 128 mel bins, 10ms hop, 25ms window, 97% pre-emphasis.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		NMels:       128,
		HopLength:   160,
		WinLength:   400,
		NFFT:        512,
		Preemphasis: 0.97,
		LogFloor:    1e-10,
		NormEpsilon: 1e-10,
	}
}

// Extractor computes normalized log-mel-spectrogram frames.
//
// Grounded on ai/mel_spectrogram.go's MelProcessor: the FFT, Hann window and
// HTK-mel-filterbank construction are kept; pre-emphasis and per-feature
// normalization are added since the TDT contract requires both and the
// teacher's own processor (tuned for a different model family) has neither.
type Extractor struct {
	cfg        Config
	melFilters [][]float64
	window     []float64
	fft        *fourier.FFT
}

// NewExtractor builds an Extractor for the given configuration.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		cfg:        cfg,
		melFilters: createMelFilterbank(cfg.NFFT, cfg.NMels, cfg.SampleRate),
		window:     createHannWindow(cfg.WinLength),
		fft:        fourier.NewFFT(cfg.NFFT),
	}
}

// Extract converts raw samples into a (T, NMels) log-mel feature matrix.
// Returns an empty matrix if samples is shorter than the window length.
func (e *Extractor) Extract(samples []float32) [][]float32 {
	if len(samples) < e.cfg.WinLength {
		return nil
	}

	pre := preemphasize(samples, e.cfg.Preemphasis)

	numFrames := (len(pre)-e.cfg.WinLength)/e.cfg.HopLength + 1
	melSpec := make([][]float32, numFrames)

	for frame := 0; frame < numFrames; frame++ {
		frameStart := frame * e.cfg.HopLength

		frameData := make([]float64, e.cfg.NFFT)
		for i := 0; i < e.cfg.WinLength; i++ {
			frameData[i] = float64(pre[frameStart+i]) * e.window[i]
		}

		coeffs := e.fft.Coefficients(nil, frameData)

		powerSpec := make([]float64, e.cfg.NFFT/2+1)
		for i := range powerSpec {
			re := real(coeffs[i])
			im := imag(coeffs[i])
			powerSpec[i] = re*re + im*im
		}

		melSpec[frame] = make([]float32, e.cfg.NMels)
		for m := 0; m < e.cfg.NMels; m++ {
			sum := 0.0
			for k, p := range powerSpec {
				sum += p * e.melFilters[m][k]
			}
			if sum < e.cfg.LogFloor {
				sum = e.cfg.LogFloor
			}
			melSpec[frame][m] = float32(math.Log(sum))
		}
	}

	normalizeColumns(melSpec, e.cfg.NormEpsilon)
	return melSpec
}

// preemphasize applies y[i] = x[i] - coeff*x[i-1], y[0] = x[0].
func preemphasize(samples []float32, coeff float64) []float32 {
	out := make([]float32, len(samples))
	out[0] = samples[0]
	c := float32(coeff)
	for i := 1; i < len(samples); i++ {
		out[i] = samples[i] - c*samples[i-1]
	}
	return out
}

// normalizeColumns subtracts the per-mel-bin mean and divides by its
// standard deviation (floored at epsilon), in place.
func normalizeColumns(melSpec [][]float32, epsilon float64) {
	t := len(melSpec)
	if t == 0 {
		return
	}
	nMels := len(melSpec[0])

	mean := make([]float64, nMels)
	for _, row := range melSpec {
		for m, v := range row {
			mean[m] += float64(v)
		}
	}
	for m := range mean {
		mean[m] /= float64(t)
	}

	variance := make([]float64, nMels)
	for _, row := range melSpec {
		for m, v := range row {
			d := float64(v) - mean[m]
			variance[m] += d * d
		}
	}
	for m := range variance {
		variance[m] /= float64(t)
	}

	std := make([]float64, nMels)
	for m, v := range variance {
		s := math.Sqrt(v)
		if s < epsilon {
			s = epsilon
		}
		std[m] = s
	}

	for _, row := range melSpec {
		for m := range row {
			row[m] = float32((float64(row[m]) - mean[m]) / std[m])
		}
	}
}

// htkHzToMel and htkMelToHz implement the HTK mel scale (the convention
// torchaudio/librosa filterbanks are built against).
func htkHzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func htkMelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melBandEdges returns the nMels+2 Hz boundaries (left edge, nMels band
// centers, right edge) of a triangular mel filterbank spanning [0, nyquist].
func melBandEdges(nMels int, nyquist float64) []float64 {
	loMel, hiMel := htkHzToMel(0), htkHzToMel(nyquist)
	step := (hiMel - loMel) / float64(nMels+1)

	edges := make([]float64, nMels+2)
	for band := range edges {
		edges[band] = htkMelToHz(loMel + float64(band)*step)
	}
	return edges
}

// createMelFilterbank builds a triangular mel filterbank compatible with the
// HTK/torchaudio convention, spanning [0, sampleRate/2] Hz. Each row m is a
// triangle rising from edges[m] to a peak at edges[m+1] and falling back to
// zero at edges[m+2].
func createMelFilterbank(nFFT, nMels, sampleRate int) [][]float64 {
	binCount := nFFT/2 + 1
	nyquist := float64(sampleRate) / 2.0
	edges := melBandEdges(nMels, nyquist)

	bank := make([][]float64, nMels)
	for band := range bank {
		rise := edges[band+1] - edges[band]
		fall := edges[band+2] - edges[band+1]

		row := make([]float64, binCount)
		for bin := range row {
			binHz := float64(bin) * nyquist / float64(binCount-1)

			var weight float64
			switch {
			case binHz <= edges[band] || binHz >= edges[band+2]:
				weight = 0
			case binHz <= edges[band+1]:
				weight = (binHz - edges[band]) / rise
			default:
				weight = (edges[band+2] - binHz) / fall
			}
			row[bin] = weight
		}
		bank[band] = row
	}
	return bank
}

// createHannWindow returns a periodic-free (symmetric) Hann window of the
// given length.
func createHannWindow(length int) []float64 {
	w := make([]float64, length)
	denom := float64(length - 1)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
	}
	return w
}
