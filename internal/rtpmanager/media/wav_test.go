package media

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeTestWAV writes a minimal PCM WAV file and returns its path.
func writeTestWAV(t *testing.T, sampleRate uint32, channels uint16, samples []int16) string {
	t.Helper()

	data := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		data = binary.LittleEndian.AppendUint16(data, uint16(s))
	}

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate*uint32(channels)*2)
	buf = binary.LittleEndian.AppendUint16(buf, channels*2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return path
}

func TestReadWAVFile(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768, 0, 500, -500}
	path := writeTestWAV(t, 8000, 1, samples)

	audio, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile() error: %v", err)
	}
	if audio.SampleRate != 8000 || audio.NumChannels != 1 || audio.BitsPerSample != 16 {
		t.Fatalf("parsed format = %d Hz / %d ch / %d bit, want 8000/1/16",
			audio.SampleRate, audio.NumChannels, audio.BitsPerSample)
	}
	if len(audio.PCMData) != len(samples)*2 {
		t.Fatalf("PCM data = %d bytes, want %d", len(audio.PCMData), len(samples)*2)
	}
}

func TestReadWAVFileRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	if err := os.WriteFile(path, []byte("this is not a wav file at all"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ReadWAVFile(path); err == nil {
		t.Fatalf("ReadWAVFile() accepted a non-WAV file")
	}
}

func TestResampleAudioDownmixesStereo(t *testing.T) {
	// Interleaved L/R pairs; each pair averages to a known value.
	samples := []int16{100, 300, -100, -300, 0, 2000}
	path := writeTestWAV(t, 8000, 2, samples)

	audio, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile() error: %v", err)
	}

	mono, err := ResampleAudio(audio)
	if err != nil {
		t.Fatalf("ResampleAudio() error: %v", err)
	}

	want := []int16{200, -200, 1000}
	if len(mono) != len(want)*2 {
		t.Fatalf("mono = %d bytes, want %d", len(mono), len(want)*2)
	}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(mono[i*2:]))
		if got != w {
			t.Fatalf("mono[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestResampleAudioHalvesRate(t *testing.T) {
	samples := make([]int16, 1600) // 100ms at 16kHz
	path := writeTestWAV(t, 16000, 1, samples)

	audio, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("ReadWAVFile() error: %v", err)
	}

	out, err := ResampleAudio(audio)
	if err != nil {
		t.Fatalf("ResampleAudio() error: %v", err)
	}

	// 100ms at 8kHz is 800 samples; interpolation may stop a sample
	// short of the exact count at the tail.
	outSamples := len(out) / 2
	if outSamples < 790 || outSamples > 800 {
		t.Fatalf("resampled to %d samples, want ~800", outSamples)
	}
}

func TestG711EncodingLengths(t *testing.T) {
	pcm := make([]byte, 320) // 160 16-bit samples

	if got := len(PCMToPCMU(pcm)); got != 160 {
		t.Fatalf("PCMToPCMU produced %d bytes, want 160", got)
	}
	if got := len(PCMToPCMA(pcm)); got != 160 {
		t.Fatalf("PCMToPCMA produced %d bytes, want 160", got)
	}
}
