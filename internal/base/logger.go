// Package base holds small types shared by the public packages.
package base

import (
	"fmt"
	"log"
	"os"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

var _ Logger = DefaultLogger{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Errorf implements the Logger.Errorf interface.
func (DefaultLogger) Errorf(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("ERROR: "+format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (DefaultLogger) Fatalf(format string, args ...any) {
	_ = log.Output(2, fmt.Sprintf("FATAL: "+format, args...))
	os.Exit(1)
}

// NoopLogger discards everything except fatal messages, which panic.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// Infof implements the Logger.Infof interface.
func (NoopLogger) Infof(string, ...any) {}

// Errorf implements the Logger.Errorf interface.
func (NoopLogger) Errorf(string, ...any) {}

// Fatalf implements the Logger.Fatalf interface.
func (NoopLogger) Fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
