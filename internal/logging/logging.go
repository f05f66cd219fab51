// Package logging builds the process-wide zap logger. Components receive
// named child loggers through their constructors; nothing reads a global.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the logging block of the gateway config file.
type Config struct {
	Level      string `mapstructure:"level"`       // "debug", "info", "warn", "error"
	ToStdout   bool   `mapstructure:"to_stdout"`   // write to stdout
	ToFile     bool   `mapstructure:"to_file"`     // write to a rotated file
	FilePath   string `mapstructure:"file"`        // log file path
	MaxSizeMB  int    `mapstructure:"max_size"`    // rotate after this many MB
	MaxAge     int    `mapstructure:"max_age"`     // keep rotated files this many days
	MaxBackups int    `mapstructure:"max_backups"` // rotated files to keep
	Compress   bool   `mapstructure:"compress"`    // gzip rotated files
}

// New builds a logger from cfg. With no outputs enabled it falls back to
// stdout so a misconfigured daemon still says something.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	level := zapcore.InfoLevel
	_ = level.Set(cfg.Level) // invalid level keeps InfoLevel

	var cores []zapcore.Core
	if cfg.ToStdout {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}
	if cfg.ToFile && cfg.FilePath != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder, writer, level))
	}
	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
