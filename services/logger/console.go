package logsvc

import (
	"io"
	"log"

	"github.com/trezcool/registrar/core"
)

// ConsoleLogger writes every entry to a std logger. Used in DEV & TEST.
type ConsoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	return &ConsoleLogger{std: std}
}

// NewDiscardLogger returns a logger that drops every entry; for tests.
func NewDiscardLogger() *ConsoleLogger {
	return &ConsoleLogger{std: log.New(io.Discard, "", 0)}
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) { printEntry(l.std, "DEBUG", msg, args) }
func (l ConsoleLogger) Info(msg string, args ...interface{})  { printEntry(l.std, "INFO", msg, args) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { printEntry(l.std, "WARN", msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { printEntry(l.std, "ERROR", msg, args) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	printEntry(l.std, "FATAL", msg, args)
	l.std.Fatal(msg)
}

func printEntry(std *log.Logger, level, msg string, args []interface{}) {
	std.Printf("[%s] %s\n", level, msg)
	for _, arg := range args {
		std.Printf("%+v\n", arg)
	}
}
