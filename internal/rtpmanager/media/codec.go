package media

import (
	"fmt"
	"log/slog"
	"time"
)

// Codec is an immutable audio codec specification used for RTP
// streaming.
type Codec struct {
	Name        string        // codec name ("PCMU", "PCMA")
	PayloadType uint8         // RTP payload type (0 for PCMU, 8 for PCMA)
	SampleRate  uint32        // sample rate in Hz
	SampleDur   time.Duration // duration per frame (typically 20ms)
	Channels    int           // 1 for mono
}

// Pre-defined codecs.
var (
	// CodecPCMU is G.711 µ-law.
	CodecPCMU = Codec{"PCMU", 0, 8000, 20 * time.Millisecond, 1}

	// CodecPCMA is G.711 A-law.
	CodecPCMA = Codec{"PCMA", 8, 8000, 20 * time.Millisecond, 1}

	// CodecTelephoneEvent is RFC 4733 DTMF events.
	CodecTelephoneEvent = Codec{"telephone-event", 101, 8000, 20 * time.Millisecond, 1}
)

// SamplesPerFrame returns the number of samples in one frame: 160 for
// 8kHz with 20ms frames.
func (c Codec) SamplesPerFrame() int {
	return int(c.SampleRate) * int(c.SampleDur) / int(time.Second)
}

// BytesPerFrame returns the payload bytes per frame. G.711 encodes one
// byte per sample.
func (c Codec) BytesPerFrame() int {
	return c.SamplesPerFrame() * c.Channels
}

// TimestampIncrement returns the RTP timestamp increment per frame.
func (c Codec) TimestampIncrement() uint32 {
	return uint32(c.SamplesPerFrame())
}

// CodecConfig binds a codec to the function that converts parsed audio
// into its wire encoding.
type CodecConfig struct {
	Name        string
	PayloadType int
	SampleRate  int
	Wire        Codec
	Resampler   func(*AudioFile) ([]byte, error)
}

// CodecManager holds the supported codec set.
type CodecManager struct {
	codecs map[string]*CodecConfig
}

// NewCodecManager creates a codec manager supporting both G.711
// variants.
func NewCodecManager() *CodecManager {
	cm := &CodecManager{codecs: make(map[string]*CodecConfig)}

	cm.Register("PCMU", &CodecConfig{
		Name:        "PCMU",
		PayloadType: 0,
		SampleRate:  8000,
		Wire:        CodecPCMU,
		Resampler:   encodePCMU,
	})
	cm.Register("PCMA", &CodecConfig{
		Name:        "PCMA",
		PayloadType: 8,
		SampleRate:  8000,
		Wire:        CodecPCMA,
		Resampler:   encodePCMA,
	})

	return cm
}

// Register adds or replaces a codec configuration.
func (cm *CodecManager) Register(name string, cfg *CodecConfig) {
	cm.codecs[name] = cfg
	slog.Debug("[CodecMgr] Registered codec", "name", name, "pt", cfg.PayloadType, "sr", cfg.SampleRate)
}

// Get retrieves a codec configuration by name.
func (cm *CodecManager) Get(name string) (*CodecConfig, error) {
	cfg, exists := cm.codecs[name]
	if !exists {
		return nil, fmt.Errorf("codec not supported: %s", name)
	}
	return cfg, nil
}

// GetByPayloadTypeString retrieves a codec by name or payload type
// string ("PCMU", "0", "8").
func (cm *CodecManager) GetByPayloadTypeString(ptStr string) (*CodecConfig, error) {
	if cfg, err := cm.Get(ptStr); err == nil {
		return cfg, nil
	}
	for _, cfg := range cm.codecs {
		if fmt.Sprintf("%d", cfg.PayloadType) == ptStr {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("codec not found for payload type: %s", ptStr)
}

// Supports reports whether ptStr names a registered codec.
func (cm *CodecManager) Supports(ptStr string) bool {
	_, err := cm.GetByPayloadTypeString(ptStr)
	return err == nil
}

func encodePCMU(audioFile *AudioFile) ([]byte, error) {
	pcm, err := ResampleAudio(audioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resample for PCMU: %w", err)
	}
	return PCMToPCMU(pcm), nil
}

func encodePCMA(audioFile *AudioFile) ([]byte, error) {
	pcm, err := ResampleAudio(audioFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resample for PCMA: %w", err)
	}
	return PCMToPCMA(pcm), nil
}
