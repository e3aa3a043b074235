package hooklog

import (
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Severity names understood by the default palette.
const (
	LevelNotSet   = "NOTSET"
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// SlogLevelCritical is the slog level mapped to CRITICAL.
const SlogLevelCritical = slog.Level(12)

var levelNumbers = map[string]int{
	LevelNotSet:   0,
	LevelDebug:    10,
	LevelInfo:     20,
	LevelWarning:  30,
	LevelError:    40,
	LevelCritical: 50,
}

// LevelNumber returns the conventional numeric value of a severity name,
// or 0 when the name is not one of the standard ones.
func LevelNumber(name string) int {
	return levelNumbers[strings.ToUpper(strings.TrimSpace(name))]
}

// SlogLevelName maps a slog level onto the standard severity names.
func SlogLevelName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return LevelNotSet
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	case l < SlogLevelCritical:
		return LevelError
	default:
		return LevelCritical
	}
}

// ZerologLevelName maps a zerolog level string ("info", "warn", ...) onto the
// standard severity names. Unknown names are upper-cased and passed through.
func ZerologLevelName(s string) string {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	switch lvl {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return LevelDebug
	case zerolog.InfoLevel:
		return LevelInfo
	case zerolog.WarnLevel:
		return LevelWarning
	case zerolog.ErrorLevel:
		return LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return LevelCritical
	case zerolog.NoLevel:
		return LevelNotSet
	default:
		return strings.ToUpper(lvl.String())
	}
}
