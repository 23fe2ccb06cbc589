// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package logrus adapts sirupsen/logrus to the pkg/logger.Logger interface.
package logrus

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amd-aig/workflow-engine/pkg/logger"
	"github.com/amd-aig/workflow-engine/pkg/logger/conf"
)

// Wrapper implements logger.Logger on top of a *logrus.Entry.
type Wrapper struct {
	entry *logrus.Entry
}

var _ logger.Logger = (*Wrapper)(nil)

// NewLogrusWrapper builds a Wrapper from the given configuration.
func NewLogrusWrapper(cfg *conf.LogConfig) (logger.Logger, error) {
	if cfg == nil {
		cfg = conf.DefaultConfig()
	}
	cfg.Sanitize()

	base := logrus.New()
	base.SetLevel(toLogrusLevel(cfg.Level))

	switch cfg.Formatter {
	case conf.JSONFormater:
		base.SetFormatter(&logrus.JSONFormatter{})
	case conf.StructuredFormater:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	base.SetOutput(newOutput(cfg))

	return &Wrapper{entry: logrus.NewEntry(base)}, nil
}

func newOutput(cfg *conf.LogConfig) io.Writer {
	if cfg.OutputPath == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

func toLogrusLevel(l conf.Level) logrus.Level {
	switch l {
	case conf.TraceLevel:
		return logrus.TraceLevel
	case conf.DebugLevel:
		return logrus.DebugLevel
	case conf.WarnLevel:
		return logrus.WarnLevel
	case conf.ErrorLevel:
		return logrus.ErrorLevel
	case conf.FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func (w *Wrapper) Log(level conf.Level, args ...interface{}) {
	w.entry.Log(toLogrusLevel(level), args...)
}

func (w *Wrapper) Logf(level conf.Level, format string, args ...interface{}) {
	w.entry.Logf(toLogrusLevel(level), format, args...)
}

func (w *Wrapper) WithFields(fields map[string]interface{}) logger.Logger {
	return &Wrapper{entry: w.entry.WithFields(fields)}
}

func (w *Wrapper) Sync() error {
	return nil
}
