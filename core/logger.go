package core

import "github.com/pkg/errors"

type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LogFailure logs a failed operation: expected domain failures as warnings, anything else as errors.
func LogFailure(logger Logger, msg string, err error, args ...interface{}) {
	if IsDomainError(err) {
		logger.Warn(msg+": "+err.Error(), args...)
		return
	}
	logger.Error(msg, append([]interface{}{errors.Wrap(err, msg)}, args...)...)
}
