// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import "time"

// AgentQueueHeartbeat is the liveness signal an agent queue posts
// periodically. The queue resource service (C7) treats a queue as alive
// while its heartbeat entry's lease has not expired, and weights Auto
// selection by FreeSlots; LastSeen is carried but not consulted.
type AgentQueueHeartbeat struct {
	QueueID      string    `json:"queue_id"`
	LastSeen     time.Time `json:"last_seen"`
	FreeSlots    int       `json:"free_slots"`
	FacilityKind string    `json:"facility_kind"`
}
