// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package conf

// LogConfig configures the global logger: which backend to build (Core),
// how to render entries (Formatter), the minimum Level to emit, and where
// to write them (OutputPath, defaulting to stdout when empty).
type LogConfig struct {
	Core      Core      `json:"core" yaml:"core"`
	Formatter Formatter `json:"formatter" yaml:"formatter"`
	Level     Level     `json:"level" yaml:"level"`

	// OutputPath is a file path to append log lines to. Empty means stdout.
	OutputPath string `json:"outputPath" yaml:"outputPath"`

	// Rotation settings, forwarded to lumberjack by the logrus backend when
	// OutputPath is set; the zap backend does not use them.
	MaxSizeMB  int  `json:"maxSizeMb" yaml:"maxSizeMb"`
	MaxBackups int  `json:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int  `json:"maxAgeDays" yaml:"maxAgeDays"`
	Compress   bool `json:"compress" yaml:"compress"`
}

// DefaultConfig returns a logrus-backed, console-formatted, info-level
// configuration writing to stdout.
func DefaultConfig() *LogConfig {
	return &LogConfig{
		Core:       LogrusCore,
		Formatter:  ConsoleFormater,
		Level:      InfoLevel,
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// Sanitize fills in any invalid or zero-value fields with their defaults,
// mirroring the tolerant-of-partial-config convention used elsewhere in
// this codebase (see config.ControllerConfig's Get*BindAddress helpers).
func (c *LogConfig) Sanitize() {
	def := DefaultConfig()
	if !isValidCore(c.Core) {
		c.Core = def.Core
	}
	if !isValidFormatter(c.Formatter) {
		c.Formatter = def.Formatter
	}
	if !isValidLevel(c.Level) {
		c.Level = def.Level
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = def.MaxSizeMB
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = def.MaxBackups
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = def.MaxAgeDays
	}
}
