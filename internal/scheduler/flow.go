// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// FlowScheduler handles FlowChange messages dispatched from the Status
// Bus for a WorkflowInstance (spec.md §4.6's flow-level handler).
type FlowScheduler struct {
	workflows repository.WorkflowRepository
	nodes     repository.NodeRepository
	publisher Publisher
}

// NewFlowScheduler builds a FlowScheduler over its repositories and the
// bus it publishes further transitions onto.
func NewFlowScheduler(workflows repository.WorkflowRepository, nodes repository.NodeRepository, publisher Publisher) *FlowScheduler {
	return &FlowScheduler{workflows: workflows, nodes: nodes, publisher: publisher}
}

// Change is the external entry point: persist the new status, then run
// the per-status handler.
func (s *FlowScheduler) Change(ctx context.Context, flowID string, change domain.FlowChange) error {
	wf, err := s.workflows.Get(ctx, flowID)
	if err != nil {
		return fmt.Errorf("scheduler: loading flow %q: %w", flowID, err)
	}
	wf.Status = change.Status
	if err := s.workflows.Update(ctx, wf); err != nil {
		return fmt.Errorf("scheduler: saving flow %q: %w", flowID, err)
	}
	return s.HandleChanged(ctx, wf, change)
}

// HandleChanged runs the handler for change.Status against the
// already-persisted flow.
func (s *FlowScheduler) HandleChanged(ctx context.Context, wf *domain.WorkflowInstance, change domain.FlowChange) error {
	switch change.Status {
	case domain.FlowPending:
		return s.handlePending(ctx, wf)
	case domain.FlowRunning:
		// Both is_resumed=false (idempotent first publish) and
		// is_resumed=true (bookkeeping after a resume round-trip) take no
		// further action at the flow level; the status write above is the
		// entire handler.
		return nil
	case domain.FlowCompleted, domain.FlowFailed, domain.FlowTerminated, domain.FlowPaused:
		// Terminal/quasi-terminal: status already persisted, no further
		// emission.
		return nil
	case domain.FlowPausing, domain.FlowTerminating:
		return s.forwardToNodes(ctx, wf.ID, change.Status)
	default:
		return fmt.Errorf("scheduler: unhandled flow status %q", change.Status)
	}
}

// handlePending finds the flow's entry nodes (in-degree 0), marks every
// other node Standby, and publishes Node{Pending} for each entry.
func (s *FlowScheduler) handlePending(ctx context.Context, wf *domain.WorkflowInstance) error {
	entries := entryNodeIDs(wf.Spec, "")
	entrySet := make(map[string]bool, len(entries))
	for _, id := range entries {
		entrySet[id] = true
	}

	nodes, err := s.nodes.ListByFlow(ctx, wf.ID)
	if err != nil {
		return fmt.Errorf("scheduler: listing nodes for flow %q: %w", wf.ID, err)
	}
	for _, n := range nodes {
		if entrySet[n.ID] {
			continue
		}
		n.Status = domain.NodeStandby
		if err := s.nodes.Update(ctx, n); err != nil {
			return fmt.Errorf("scheduler: marking node %q standby: %w", n.ID, err)
		}
	}

	for _, id := range entries {
		s.publisher.Publish(domain.NewNodeChangeMsg(id, domain.NodeChange{Status: domain.NodePending}))
	}
	return nil
}

// forwardToNodes relays a flow-level Pausing/Terminating to every
// non-terminal node of the flow, as the corresponding Node status.
func (s *FlowScheduler) forwardToNodes(ctx context.Context, flowID string, flowStatus domain.FlowStatus) error {
	target := domain.NodePausing
	if flowStatus == domain.FlowTerminating {
		target = domain.NodeTerminating
	}

	nodes, err := s.nodes.ListByFlow(ctx, flowID)
	if err != nil {
		return fmt.Errorf("scheduler: listing nodes for flow %q: %w", flowID, err)
	}
	for _, n := range nodes {
		if n.Status.IsTerminal() {
			continue
		}
		s.publisher.Publish(domain.NewNodeChangeMsg(n.ID, domain.NodeChange{Status: target}))
	}
	return nil
}
