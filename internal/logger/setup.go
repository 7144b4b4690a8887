package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

const logFileRelPath = "vibe-sync/vibe-sync.log"

// Setup builds the zerolog logger behind the console. The level follows the
// -v count; the log file lives under $XDG_STATE_HOME. A console writer on
// stderr is added from verbosity 2 on.
func Setup(verbosity int) (zerolog.Logger, error) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	var writers []io.Writer
	if verbosity >= 2 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	logPath, fileErr := xdg.StateFile(logFileRelPath)
	if fileErr == nil {
		var file *os.File
		file, fileErr = openLogFile(logPath)
		if fileErr == nil {
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	zl := zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if verbosity >= 2 {
		zl = zl.With().Caller().Logger()
	}
	if fileErr != nil {
		zl.Warn().Err(fileErr).Msg("Failed to open log file, file logging disabled")
	}
	zl.Debug().Int("verbosity", verbosity).Str("logFile", logPath).Msg("Logger initialized")
	return zl, fileErr
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
