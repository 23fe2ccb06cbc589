// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import "github.com/amd-aig/workflow-engine/internal/domain"

// Publisher is the subset of *bus.Bus the scheduler depends on, kept as
// an interface so handler tests can assert on published messages without
// standing up shard goroutines.
type Publisher interface {
	Publish(msg domain.ChangeMsg)
}
