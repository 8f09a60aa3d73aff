package sipvoip

import (
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// slogWriter adapts zerolog's line-oriented JSON output onto an slog.Logger,
// folding sipgo's zerolog lines into the application's own log stream.
// Unlike internal/logger.JSONParsingWriter it does not reparse the JSON:
// each line is logged verbatim at debug level, prefixed "[sipgo]".
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}
	w.logger.Debug("[sipgo] " + line)
	return len(p), nil
}

// InstallLogBridge points sipgo's zerolog global logger at the given
// slog.Logger, so SIP transport internals (transaction retransmits,
// malformed messages, transport errors) show up alongside the rest of the
// application's structured logs instead of going to zerolog's own default
// stderr writer.
func InstallLogBridge(logger *slog.Logger) {
	w := &slogWriter{logger: logger}
	zlog.Logger = zerolog.New(w).With().Timestamp().Logger()
}
