package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zaf/g711"
)

// AudioFile is a parsed WAV file: format metadata plus raw PCM data.
type AudioFile struct {
	AudioFormat   uint16
	SampleRate    uint32
	NumChannels   uint16
	BitsPerSample uint16
	PCMData       []byte
}

// ReadWAVFile parses a RIFF/WAVE file. Only uncompressed PCM (format 1)
// is accepted; everything else should have been transcoded offline.
func ReadWAVFile(filePath string) (*AudioFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var header [12]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	// Walk the chunks: the fmt chunk must precede data, unknown chunks
	// are skipped.
	audioFile := &AudioFile{}
	sawFormat := false
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(file, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(file, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, fmt.Errorf("failed to read format chunk: %w", err)
			}
			if fmtChunk.AudioFormat != 1 {
				return nil, fmt.Errorf("only PCM audio format (1) is supported, got %d", fmtChunk.AudioFormat)
			}
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := file.Seek(extra, io.SeekCurrent); err != nil {
					return nil, fmt.Errorf("failed to skip format extension: %w", err)
				}
			}
			audioFile.AudioFormat = fmtChunk.AudioFormat
			audioFile.NumChannels = fmtChunk.NumChannels
			audioFile.SampleRate = fmtChunk.SampleRate
			audioFile.BitsPerSample = fmtChunk.BitsPerSample
			sawFormat = true
			slog.Debug("[WAV] Parsed format chunk",
				"sample_rate", audioFile.SampleRate,
				"channels", audioFile.NumChannels,
				"bits_per_sample", audioFile.BitsPerSample)

		case "data":
			if !sawFormat {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			audioData := make([]byte, chunkSize)
			if _, err := io.ReadFull(file, audioData); err != nil {
				return nil, fmt.Errorf("failed to read audio data: %w", err)
			}
			audioFile.PCMData = audioData
			slog.Debug("[WAV] Loaded audio data", "file", filePath, "size_bytes", len(audioData))
			return audioFile, nil

		default:
			if _, err := file.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("failed to skip chunk %q: %w", chunkID, err)
			}
		}
	}

	return nil, fmt.Errorf("data chunk not found in WAV file")
}

// ResampleAudio converts parsed audio to 8000 Hz mono 16-bit PCM, the
// input both G.711 variants expect.
func ResampleAudio(audioFile *AudioFile) ([]byte, error) {
	const targetSampleRate = 8000

	monoPCM, err := downmix(audioFile)
	if err != nil {
		return nil, err
	}

	if audioFile.SampleRate == targetSampleRate {
		return monoPCM, nil
	}

	slog.Debug("[Audio] Resampling", "from", audioFile.SampleRate, "to", targetSampleRate, "input_bytes", len(monoPCM))

	// Linear interpolation between neighboring source samples.
	ratio := float64(audioFile.SampleRate) / float64(targetSampleRate)
	inSamples := len(monoPCM) / 2
	outSamples := int(float64(inSamples) / ratio)
	outputPCM := make([]byte, 0, outSamples*2)

	for i := 0; i < outSamples; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		if srcIdx+1 >= inSamples {
			break
		}

		s1 := int16(binary.LittleEndian.Uint16(monoPCM[srcIdx*2:]))
		s2 := int16(binary.LittleEndian.Uint16(monoPCM[(srcIdx+1)*2:]))
		interpolated := int16(float64(s1)*(1-frac) + float64(s2)*frac)

		outputPCM = binary.LittleEndian.AppendUint16(outputPCM, uint16(interpolated))
	}

	return outputPCM, nil
}

// downmix converts the PCM data to mono by averaging stereo channels.
func downmix(audioFile *AudioFile) ([]byte, error) {
	switch audioFile.NumChannels {
	case 1:
		return audioFile.PCMData, nil
	case 2:
		src := audioFile.PCMData
		mono := make([]byte, 0, len(src)/2)
		for i := 0; i+4 <= len(src); i += 4 {
			left := int16(binary.LittleEndian.Uint16(src[i:]))
			right := int16(binary.LittleEndian.Uint16(src[i+2:]))
			avg := int16((int32(left) + int32(right)) / 2)
			mono = binary.LittleEndian.AppendUint16(mono, uint16(avg))
		}
		return mono, nil
	default:
		return nil, fmt.Errorf("unsupported number of channels: %d", audioFile.NumChannels)
	}
}

// PCMToPCMU encodes 16-bit PCM samples as G.711 µ-law.
func PCMToPCMU(pcm []byte) []byte {
	return g711.EncodeUlaw(pcm)
}

// PCMToPCMA encodes 16-bit PCM samples as G.711 A-law.
func PCMToPCMA(pcm []byte) []byte {
	return g711.EncodeAlaw(pcm)
}
