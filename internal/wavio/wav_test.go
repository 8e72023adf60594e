package wavio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildWAV(t *testing.T, sampleRate, channels, bitsPerSample int, pcm []byte) []byte {
	t.Helper()
	var buf bytes.Buffer

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := uint32(len(pcm))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)

	return buf.Bytes()
}

func int16PCM(samples ...int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestRead_Mono16kHz16BitPCM(t *testing.T) {
	wav := buildWAV(t, 16000, 1, 16, int16PCM(0, 16384, -16384, 32767))

	audio, err := Read(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", audio.SampleRate)
	}
	if len(audio.Samples) != 4 {
		t.Fatalf("len(Samples) = %d, want 4", len(audio.Samples))
	}
	if audio.Samples[0] != 0 {
		t.Errorf("Samples[0] = %v, want 0", audio.Samples[0])
	}
	if !closeEnough(float64(audio.Samples[1]), 0.5, 1e-3) {
		t.Errorf("Samples[1] = %v, want ~0.5", audio.Samples[1])
	}
}

func TestRead_StereoDownmixesToMono(t *testing.T) {
	// Two stereo frames: (1.0, -1.0) and (0, 0) in int16 full-scale.
	wav := buildWAV(t, 16000, 2, 16, int16PCM(32767, -32768, 0, 0))

	audio, err := Read(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(audio.Samples) != 2 {
		t.Fatalf("len(Samples) = %d, want 2", len(audio.Samples))
	}
	if !closeEnough(float64(audio.Samples[0]), 0.0, 1e-3) {
		t.Errorf("Samples[0] = %v, want ~0 (average of +1/-1)", audio.Samples[0])
	}
}

func TestRead_RejectsNonstandardSampleRate(t *testing.T) {
	wav := buildWAV(t, 44100, 1, 16, int16PCM(0, 0))
	if _, err := Read(bytes.NewReader(wav)); err == nil {
		t.Error("expected an error for a non-16kHz file")
	}
}

func TestRead_RejectsNonWAV(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a wav file at all"))); err == nil {
		t.Error("expected an error for non-RIFF data")
	}
}

func closeEnough(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < tol
}
