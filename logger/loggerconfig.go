// loggerconfig.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogOutputJSON          = "json"
	LogOutputHumanReadable = "human-readable"
)

// BuildLogger creates a zap backed Logger. JSON is the default encoding; LogOutputHumanReadable
// selects the console encoder with coloured levels and the given field separator. When
// logExportPath is set, entries are also written to the file resolved by EnsureLogFilePath.
func BuildLogger(logLevel LogLevel, logOutputFormat string, logConsoleSeparator string, logExportPath string) (Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(convertToZapLevel(logLevel)),
		Development:       false,
		Encoding:          "json",
		DisableCaller:     true,
		DisableStacktrace: true,
		Sampling:          nil,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	if logOutputFormat == LogOutputHumanReadable {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if logConsoleSeparator != "" {
			config.EncoderConfig.ConsoleSeparator = logConsoleSeparator
		}
	}

	if logExportPath != "" {
		path, err := EnsureLogFilePath(logExportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare log export path: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, path)
	}

	zl, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &defaultLogger{
		logger:   zl,
		logLevel: logLevel,
	}, nil
}

// convertToZapLevel converts the custom LogLevel to a zapcore.Level
func convertToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zap.DebugLevel
	case LogLevelInfo:
		return zap.InfoLevel
	case LogLevelWarn:
		return zap.WarnLevel
	case LogLevelError:
		return zap.ErrorLevel
	case LogLevelDPanic:
		return zap.DPanicLevel
	case LogLevelPanic:
		return zap.PanicLevel
	case LogLevelFatal, LogLevelNone:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}
