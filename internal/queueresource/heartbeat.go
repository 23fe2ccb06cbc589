// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package queueresource

import (
	"context"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// heartbeatTTLSeconds is how long a queue's last heartbeat keeps it
// eligible for selection; an agent that stops reporting simply falls out
// of LivenessStore on its own once the lease expires, with no separate
// expiry sweep needed.
const heartbeatTTLSeconds = 30

// HeartbeatStore is a LivenessStore backed by the leased k/v repository
// (C2): each agent queue's heartbeat is a single TTL-bound entry, so a
// queue that stops reporting is automatically absent from ListAlive once
// its lease lapses, with no separate expiry sweep needed — the same
// "leased entries are single-writer by key" pattern the move/multipart/
// text repositories already use.
type HeartbeatStore struct {
	kv *repository.LeasedKVRepository
}

// NewHeartbeatStore builds a HeartbeatStore over a LeasedKVRepository
// namespaced for queue heartbeats.
func NewHeartbeatStore(kv *repository.LeasedKVRepository) *HeartbeatStore {
	return &HeartbeatStore{kv: kv}
}

// Report records (or refreshes) a queue's heartbeat, resetting its lease.
func (h *HeartbeatStore) Report(ctx context.Context, hb domain.AgentQueueHeartbeat) error {
	return h.kv.Put(ctx, hb.QueueID, hb)
}

// IsAlive implements LivenessStore.
func (h *HeartbeatStore) IsAlive(ctx context.Context, queueID string) (bool, error) {
	var hb domain.AgentQueueHeartbeat
	if err := h.kv.Get(ctx, queueID, &hb); err != nil {
		if err == repository.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAlive implements LivenessStore by scanning every heartbeat entry
// still within its lease.
func (h *HeartbeatStore) ListAlive(ctx context.Context) ([]domain.AgentQueueHeartbeat, error) {
	ids, err := h.kv.ScanIDs(ctx)
	if err != nil {
		return nil, err
	}
	heartbeats := make([]domain.AgentQueueHeartbeat, 0, len(ids))
	for _, id := range ids {
		var hb domain.AgentQueueHeartbeat
		if err := h.kv.Get(ctx, id, &hb); err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}
		heartbeats = append(heartbeats, hb)
	}
	return heartbeats, nil
}
