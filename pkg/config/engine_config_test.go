// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweepConfig_GetCron(t *testing.T) {
	assert.Equal(t, "*/30 * * * * *", SweepConfig{}.GetCron())
	assert.Equal(t, "0 * * * * *", SweepConfig{Cron: "0 * * * * *"}.GetCron())
}

func TestRedisConfig_GetRedisDB(t *testing.T) {
	assert.Equal(t, 0, RedisConfig{}.GetRedisDB())
	assert.Equal(t, 3, RedisConfig{DB: 3}.GetRedisDB())
}

func TestRegistryConfig_GetTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, RegistryConfig{}.GetTimeout())
	assert.Equal(t, 10*time.Second, RegistryConfig{TimeoutSeconds: -1}.GetTimeout())
	assert.Equal(t, 5*time.Second, RegistryConfig{TimeoutSeconds: 5}.GetTimeout())
}
