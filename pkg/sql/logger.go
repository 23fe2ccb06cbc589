// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package sql

import (
	"context"
	"time"

	"github.com/amd-aig/workflow-engine/pkg/logger/log"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 5 * time.Second

// NullLogger routes GORM's logging callbacks through the application's own
// structured logger instead of GORM's default stdout writer, logging only
// query errors and slow queries at Trace time.
type NullLogger struct{}

func (l NullLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l NullLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	log.Infof(msg, args...)
}

func (l NullLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	log.Warnf(msg, args...)
}

func (l NullLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	log.Errorf(msg, args...)
}

func (l NullLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil:
		log.Warnf("gorm query error after %s (rows=%d): %s: %v", elapsed, rows, sql, err)
	case elapsed > slowQueryThreshold:
		log.Warnf("slow gorm query (%s, rows=%d): %s", elapsed, rows, sql)
	}
}
