// Package logger provides namespaced debug logging gated by the DEBUG
// environment variable.
//
// Loggers are cheap to create at package scope and silent by default.
// Setting DEBUG enables output for matching namespaces:
//
//	DEBUG=1 or DEBUG=*          enable every namespace
//	DEBUG=cli:*                 enable all cli loggers
//	DEBUG=cli:monitor,ghcli:*   comma-separated patterns
//
// Output goes to stderr with the namespace as prefix so it never mixes
// with the tool's primary output.
package logger

import (
	"log"
	"os"
	"strings"
)

// Logger writes namespaced debug messages when its namespace is enabled.
type Logger struct {
	enabled bool
	l       *log.Logger
}

// New creates a logger for the given namespace, conventionally
// "package:file" (e.g. "cli:monitor").
func New(namespace string) *Logger {
	return &Logger{
		enabled: namespaceEnabled(namespace, os.Getenv("DEBUG")),
		l:       log.New(os.Stderr, namespace+" ", log.Ltime|log.Lmicroseconds),
	}
}

// Printf logs a formatted message if the namespace is enabled.
func (lg *Logger) Printf(format string, args ...any) {
	if lg.enabled {
		lg.l.Printf(format, args...)
	}
}

// Print logs a message if the namespace is enabled.
func (lg *Logger) Print(args ...any) {
	if lg.enabled {
		lg.l.Print(args...)
	}
}

func namespaceEnabled(namespace, debug string) bool {
	if debug == "" {
		return false
	}
	for _, pattern := range strings.Split(debug, ",") {
		pattern = strings.TrimSpace(pattern)
		switch {
		case pattern == "":
			continue
		case pattern == "1" || pattern == "*" || pattern == "true":
			return true
		case strings.HasSuffix(pattern, "*"):
			if strings.HasPrefix(namespace, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		case pattern == namespace:
			return true
		}
	}
	return false
}
