// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package queueresource implements the queue selection service (C7):
// picking a live agent queue for a node per its SchedulingStrategy.
// Liveness is maintained out of band by agents reporting heartbeats
// (domain.AgentQueueHeartbeat); this package only ever consumes that as a
// boolean, per spec.
package queueresource

import (
	"context"
	"fmt"
	"sort"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// LivenessStore reports which queues are currently alive and, for Auto
// selection, their current load so the service can weight its pick.
type LivenessStore interface {
	// IsAlive reports whether queueID has reported a heartbeat recently
	// enough to be considered live.
	IsAlive(ctx context.Context, queueID string) (bool, error)
	// ListAlive returns every currently-live queue's heartbeat, for Auto
	// selection among all candidates.
	ListAlive(ctx context.Context) ([]domain.AgentQueueHeartbeat, error)
}

// Service picks a queue id for a node per its SchedulingStrategy.
type Service struct {
	liveness LivenessStore
}

// NewService builds a Service over liveness.
func NewService(liveness LivenessStore) *Service {
	return &Service{liveness: liveness}
}

// GetQueue picks a queue per strategy. The topic_name the caller derives
// from the returned queue id becomes the Task's queue_topic.
func (s *Service) GetQueue(ctx context.Context, strategy domain.SchedulingStrategy) (string, error) {
	switch strategy.Kind {
	case domain.SchedulingManual:
		return s.pickManual(ctx, strategy.QueueIDs)
	case domain.SchedulingPrefer:
		return s.pickPrefer(ctx, strategy.QueueIDs)
	case domain.SchedulingAuto:
		return s.pickAuto(ctx)
	default:
		return "", fmt.Errorf("queueresource: unknown scheduling kind %q", strategy.Kind)
	}
}

// pickManual requires at least one candidate, then scans them in the
// caller-supplied (repository) order for the first alive one.
func (s *Service) pickManual(ctx context.Context, queueIDs []string) (string, error) {
	if len(queueIDs) == 0 {
		return "", fmt.Errorf("queueresource: Manual strategy names no queues")
	}
	for _, id := range queueIDs {
		alive, err := s.liveness.IsAlive(ctx, id)
		if err != nil {
			return "", err
		}
		if alive {
			return id, nil
		}
	}
	return "", fmt.Errorf("queueresource: none of the Manual queues %v is alive", queueIDs)
}

// pickPrefer tries the listed queues first, in order, then falls back to
// any other alive queue.
func (s *Service) pickPrefer(ctx context.Context, preferred []string) (string, error) {
	for _, id := range preferred {
		alive, err := s.liveness.IsAlive(ctx, id)
		if err != nil {
			return "", err
		}
		if alive {
			return id, nil
		}
	}

	all, err := s.liveness.ListAlive(ctx)
	if err != nil {
		return "", err
	}
	excluded := make(map[string]bool, len(preferred))
	for _, id := range preferred {
		excluded[id] = true
	}
	for _, hb := range all {
		if !excluded[hb.QueueID] {
			return hb.QueueID, nil
		}
	}
	return "", fmt.Errorf("queueresource: no alive queue available for Prefer strategy %v", preferred)
}

// pickAuto picks any alive queue, weighting by reported free capacity:
// the candidate with the most FreeSlots wins, ties broken by queue id for
// determinism.
func (s *Service) pickAuto(ctx context.Context) (string, error) {
	all, err := s.liveness.ListAlive(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("queueresource: no alive queue available for Auto strategy")
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].FreeSlots != all[j].FreeSlots {
			return all[i].FreeSlots > all[j].FreeSlots
		}
		return all[i].QueueID < all[j].QueueID
	})
	return all[0].QueueID, nil
}
