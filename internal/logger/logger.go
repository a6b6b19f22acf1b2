package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

func colorize(s interface{}, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// New creates a logger based on the ENV environment variable
func New() zerolog.Logger {
	return ForEnv(os.Getenv("ENV"))
}

// ForEnv picks the console logger for local/dev environments and JSON otherwise
func ForEnv(env string) zerolog.Logger {
	switch env {
	case "", "local", "dev", "development":
		return NewDevelopment()
	}
	return NewProduction()
}

// NewDevelopment creates a development logger with console output and colors
func NewDevelopment() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:         os.Stderr,
		TimeFormat:  "2006-01-02 15:04:05",
		FormatLevel: formatLevel,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// NewProduction creates a production logger with JSON output and UNIX timestamps
func NewProduction() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// TokenPreview shortens a bearer token so it can be logged.
func TokenPreview(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) > 12 {
		return token[:6] + "…" + token[len(token)-6:]
	}
	return "***"
}

func formatLevel(i interface{}) string {
	ll, ok := i.(string)
	if !ok {
		s := strings.ToUpper(fmt.Sprintf("%v", i))
		if len(s) > 3 {
			s = s[:3]
		}
		return s
	}

	switch ll {
	case "trace":
		return colorize("TRC", colorMagenta)
	case "debug":
		return colorize("DBG", colorYellow)
	case "info":
		return colorize("INF", colorGreen)
	case "warn":
		return colorize("WRN", colorRed)
	case "error":
		return colorize("ERR", colorRed)
	case "fatal":
		return colorize("FTL", colorRed)
	case "panic":
		return colorize("PNC", colorRed)
	}

	s := strings.ToUpper(ll)
	if len(s) > 3 {
		s = s[:3]
	}
	return colorize(s, colorBold)
}
