// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package zap adapts go.uber.org/zap to the pkg/logger.Logger interface;
// selected instead of pkg/logger/logrus when conf.Core is conf.ZapCore.
package zap

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amd-aig/workflow-engine/pkg/logger"
	"github.com/amd-aig/workflow-engine/pkg/logger/conf"
)

// Wrapper implements logger.Logger on top of a *zap.SugaredLogger.
type Wrapper struct {
	sugar *zap.SugaredLogger
}

var _ logger.Logger = (*Wrapper)(nil)

// NewZapWrapper builds a Wrapper from the given configuration.
func NewZapWrapper(cfg *conf.LogConfig) (logger.Logger, error) {
	if cfg == nil {
		cfg = conf.DefaultConfig()
	}
	cfg.Sanitize()

	zapCfg := zap.NewProductionConfig()
	if cfg.Formatter == conf.ConsoleFormater || cfg.Formatter == conf.StructuredFormater {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(toZapLevel(cfg.Level))
	if cfg.OutputPath != "" {
		zapCfg.OutputPaths = []string{cfg.OutputPath}
	}

	base, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &Wrapper{sugar: base.Sugar()}, nil
}

func toZapLevel(l conf.Level) zapcore.Level {
	switch l {
	case conf.TraceLevel, conf.DebugLevel:
		return zapcore.DebugLevel
	case conf.WarnLevel:
		return zapcore.WarnLevel
	case conf.ErrorLevel:
		return zapcore.ErrorLevel
	case conf.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (w *Wrapper) Log(level conf.Level, args ...interface{}) {
	switch level {
	case conf.TraceLevel, conf.DebugLevel:
		w.sugar.Debug(args...)
	case conf.WarnLevel:
		w.sugar.Warn(args...)
	case conf.ErrorLevel:
		w.sugar.Error(args...)
	case conf.FatalLevel:
		w.sugar.Error(args...)
	default:
		w.sugar.Info(args...)
	}
}

func (w *Wrapper) Logf(level conf.Level, format string, args ...interface{}) {
	switch level {
	case conf.TraceLevel, conf.DebugLevel:
		w.sugar.Debugf(format, args...)
	case conf.WarnLevel:
		w.sugar.Warnf(format, args...)
	case conf.ErrorLevel:
		w.sugar.Errorf(format, args...)
	case conf.FatalLevel:
		w.sugar.Errorf(format, args...)
	default:
		w.sugar.Infof(format, args...)
	}
}

func (w *Wrapper) WithFields(fields map[string]interface{}) logger.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Wrapper{sugar: w.sugar.With(args...)}
}

func (w *Wrapper) Sync() error {
	return w.sugar.Sync()
}
