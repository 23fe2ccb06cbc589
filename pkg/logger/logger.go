// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package logger declares the backend-agnostic logging interface the rest
// of the codebase programs against; pkg/logger/logrus and pkg/logger/zap
// provide the two concrete implementations selected by conf.Core.
package logger

import "github.com/amd-aig/workflow-engine/pkg/logger/conf"

// Logger is the minimal surface the global log package (pkg/logger/log)
// drives. Log concatenates args the way fmt.Sprint does; structured fields
// are attached through WithFields.
type Logger interface {
	Log(level conf.Level, args ...interface{})
	Logf(level conf.Level, format string, args ...interface{})

	// WithFields returns a child logger that prefixes every subsequent
	// entry with the given structured fields.
	WithFields(fields map[string]interface{}) Logger

	// Sync flushes any buffered log entries, mirroring zap.Logger.Sync.
	Sync() error
}
