// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects encoder and optional rotating file output.
type Options struct {
	Development bool
	File        string
}

// New returns a logger writing to stdout, tee'd to a rotating JSON file when
// File is set. The returned logger is also installed as zap's global.
func New(opts Options) (*zap.Logger, error) {
	var zapConfig zap.Config
	if opts.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	var logger *zap.Logger
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		consoleEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		if opts.Development {
			consoleEnc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		}
		core := zapcore.NewTee(
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotating), zapConfig.Level),
			zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), zapConfig.Level),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return nil, err
		}
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
