// Package wavio reads 16 kHz mono PCM WAV files into normalized float32
// samples.
//
// Grounded on session/wav_writer.go: the same manual RIFF/WAVE chunk
// encoding/binary idiom, applied here to reading instead of writing.
package wavio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/askidmobile/tdt/internal/tdterr"
)

const (
	formatPCM   = 1
	formatFloat = 3
)

// Audio holds decoded, normalized samples and the format they were read at.
type Audio struct {
	Samples    []float32 // mono, in [-1, 1]
	SampleRate int
}

// ReadFile reads a WAV file, down-mixing stereo to mono and converting
// 16-bit PCM or 32-bit IEEE-float samples to normalized float32. It rejects
// any sample rate other than 16000 Hz.
func ReadFile(path string) (Audio, error) {
	file, err := os.Open(path)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: %v", tdterr.ErrUnreadableAudio, err)
	}
	defer file.Close()

	return Read(file)
}

// Read decodes a WAV stream from r.
func Read(r io.Reader) (Audio, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return Audio{}, fmt.Errorf("%w: riff header: %v", tdterr.ErrUnreadableAudio, err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return Audio{}, fmt.Errorf("%w: not a RIFF/WAVE file", tdterr.ErrUnreadableAudio)
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		audioFormat   int
		samples       []float32
		sawFmt        bool
	)

	for {
		var chunkID [4]byte
		var chunkSize uint32
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF {
				break
			}
			return Audio{}, fmt.Errorf("%w: chunk id: %v", tdterr.ErrUnreadableAudio, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return Audio{}, fmt.Errorf("%w: chunk size: %v", tdterr.ErrUnreadableAudio, err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return Audio{}, fmt.Errorf("%w: fmt chunk: %v", tdterr.ErrUnreadableAudio, err)
			}
			if len(body) < 16 {
				return Audio{}, fmt.Errorf("%w: fmt chunk too short", tdterr.ErrUnreadableAudio)
			}
			audioFormat = int(binary.LittleEndian.Uint16(body[0:2]))
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			sawFmt = true

		case "data":
			if !sawFmt {
				return Audio{}, fmt.Errorf("%w: data chunk before fmt chunk", tdterr.ErrUnreadableAudio)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return Audio{}, fmt.Errorf("%w: data chunk: %v", tdterr.ErrUnreadableAudio, err)
			}
			decoded, err := decodeSamples(body, audioFormat, bitsPerSample)
			if err != nil {
				return Audio{}, err
			}
			samples = downmix(decoded, channels)

		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil && err != io.EOF {
				return Audio{}, fmt.Errorf("%w: skipping chunk %q: %v", tdterr.ErrUnreadableAudio, chunkID, err)
			}
		}

		if chunkSize%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && err != io.EOF {
				return Audio{}, fmt.Errorf("%w: chunk padding: %v", tdterr.ErrUnreadableAudio, err)
			}
		}
	}

	if !sawFmt {
		return Audio{}, fmt.Errorf("%w: missing fmt chunk", tdterr.ErrUnreadableAudio)
	}
	if sampleRate != 16000 {
		return Audio{}, fmt.Errorf("%w: got %d Hz, want 16000", tdterr.ErrUnsupportedSampleRate, sampleRate)
	}
	if channels != 1 && channels != 2 {
		return Audio{}, fmt.Errorf("%w: %d channels", tdterr.ErrUnsupportedChannelCount, channels)
	}

	return Audio{Samples: samples, SampleRate: sampleRate}, nil
}

func decodeSamples(body []byte, audioFormat, bitsPerSample int) ([]float32, error) {
	switch {
	case audioFormat == formatPCM && bitsPerSample == 16:
		n := len(body) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(body[i*2 : i*2+2]))
			out[i] = float32(v) / 32768.0
		}
		return out, nil

	case audioFormat == formatFloat && bitsPerSample == 32:
		n := len(body) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(body[i*4 : i*4+4])
			out[i] = math.Float32frombits(bits)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported format %d/%d-bit", tdterr.ErrUnreadableAudio, audioFormat, bitsPerSample)
	}
}

func downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	n := len(samples) / channels
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
