// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// Compiler resolves a NodeInstance's full task sequence, decoupling the
// scheduler from the usecase-registry/template-assembly details of C4.
type Compiler interface {
	Compile(ctx context.Context, node *domain.NodeInstance) ([]domain.StartTaskBody, error)
}

// BillingEmitter posts an opaque completion event to the billing topic
// when a node completes. A caller-supplied interface, same decoupling as
// Compiler: no billing transport is named anywhere in this system's
// dependency surface, so the concrete sink is wired by the process
// entrypoint.
type BillingEmitter interface {
	EmitCompletion(ctx context.Context, nodeID string) error
}

// NodeScheduler handles NodeChange messages dispatched from the Status
// Bus for a NodeInstance (spec.md §4.6's node-level handler).
type NodeScheduler struct {
	workflows repository.WorkflowRepository
	nodes     repository.NodeRepository
	tasks     repository.TaskRepository
	compiler  Compiler
	billing   BillingEmitter
	publisher Publisher
}

// NewNodeScheduler builds a NodeScheduler over its repositories,
// collaborators, and the bus it publishes further transitions onto.
func NewNodeScheduler(workflows repository.WorkflowRepository, nodes repository.NodeRepository, tasks repository.TaskRepository, compiler Compiler, billing BillingEmitter, publisher Publisher) *NodeScheduler {
	return &NodeScheduler{workflows: workflows, nodes: nodes, tasks: tasks, compiler: compiler, billing: billing, publisher: publisher}
}

// Change is the external entry point. If change.DoNotUpdateStatus, only
// the log/resource-sample fields are merged (see mergeResourceSample) and
// status is never touched; otherwise the row is updated and the
// per-status handler runs.
func (s *NodeScheduler) Change(ctx context.Context, nodeID string, change domain.NodeChange) error {
	node, err := s.nodes.Get(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("scheduler: loading node %q: %w", nodeID, err)
	}

	if change.DoNotUpdateStatus {
		return s.mergeResourceSample(ctx, node, change)
	}

	node.Status = change.Status
	if change.Message != "" {
		node.Log += change.Message + "\n"
	}
	if change.UsedResources != nil {
		node.ResourceMeter = change.UsedResources
	}
	if err := s.nodes.Update(ctx, node); err != nil {
		return fmt.Errorf("scheduler: saving node %q: %w", nodeID, err)
	}
	return s.HandleChanged(ctx, node, change)
}

// mergeResourceSample implements the do_not_update_status path: merge log
// and resource_meter without touching Status. The merged row is saved
// with a single unconditional Update; there is no optimistic lock and no
// retry against concurrent writers.
func (s *NodeScheduler) mergeResourceSample(ctx context.Context, node *domain.NodeInstance, change domain.NodeChange) error {
	node.Log += change.Message
	if change.UsedResources != nil {
		node.ResourceMeter = change.UsedResources
	}
	return s.nodes.Update(ctx, node)
}

// HandleChanged runs the handler for change.Status against the
// already-persisted node.
func (s *NodeScheduler) HandleChanged(ctx context.Context, node *domain.NodeInstance, change domain.NodeChange) error {
	switch change.Status {
	case domain.NodeStandby:
		return nil // scheduler observes only
	case domain.NodePending:
		return s.handlePending(ctx, node)
	case domain.NodeRunning:
		if change.IsResumed {
			return s.handleRunningResumed(ctx, node)
		}
		s.publisher.Publish(domain.NewFlowChangeMsg(node.FlowID, domain.FlowChange{Status: domain.FlowRunning}))
		return nil
	case domain.NodeCompleted:
		return s.handleCompleted(ctx, node)
	case domain.NodeFailed:
		s.publisher.Publish(domain.NewFlowChangeMsg(node.FlowID, domain.FlowChange{Status: domain.FlowFailed}))
		return nil
	case domain.NodeTerminating:
		return s.forwardToTasks(ctx, node.ID, domain.TaskTerminating, domain.TaskRunning, domain.TaskQueuing, domain.TaskPaused)
	case domain.NodeTerminated:
		return s.convergeSiblings(ctx, node, domain.NodeStatus.ConvergesTerminated, domain.NodeTerminated)
	case domain.NodePausing:
		return s.forwardToTasks(ctx, node.ID, domain.TaskPausing, domain.TaskRunning, domain.TaskQueuing)
	case domain.NodePaused:
		return s.convergeSiblings(ctx, node, domain.NodeStatus.ConvergesPaused, domain.NodePaused)
	case domain.NodeResuming:
		return s.forwardToTasks(ctx, node.ID, domain.TaskResuming, domain.TaskPaused)
	default:
		return fmt.Errorf("scheduler: unhandled node status %q", change.Status)
	}
}

// handlePending resolves the node's full task sequence via the usecase
// compiler, persists every task as Standby, and kicks off the first one.
func (s *NodeScheduler) handlePending(ctx context.Context, node *domain.NodeInstance) error {
	bodies, err := s.compiler.Compile(ctx, node)
	if err != nil {
		s.publisher.Publish(domain.NewNodeChangeMsg(node.ID, domain.NodeChange{Status: domain.NodeFailed, Message: err.Error()}))
		return nil
	}
	if len(bodies) == 0 {
		return fmt.Errorf("scheduler: node %q compiled to no tasks", node.ID)
	}

	tasks := make([]*domain.Task, len(bodies))
	for i, b := range bodies {
		tasks[i] = &domain.Task{
			ID:             uuid.New().String(),
			NodeInstanceID: node.ID,
			Type:           b.Type,
			Body:           b,
			QueueTopic:     node.QueueID,
			Status:         domain.TaskStandby,
		}
	}
	if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
		return fmt.Errorf("scheduler: creating tasks for node %q: %w", node.ID, err)
	}

	s.publisher.Publish(domain.NewTaskChangeMsg(tasks[0].ID, domain.TaskChange{Status: domain.TaskRunning}))
	return nil
}

// handleRunningResumed converges a resumed-running node up toward its
// batch parent, if it belongs to one, once every same-parent sibling has
// left Resuming; otherwise it waits for every flow-level peer to leave
// Resuming before publishing the flow's own resumed-running transition.
func (s *NodeScheduler) handleRunningResumed(ctx context.Context, node *domain.NodeInstance) error {
	peers, err := s.siblings(ctx, node)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if p.Status == domain.NodeResuming {
			return nil
		}
	}

	if node.BatchParentID != "" {
		s.publisher.Publish(domain.NewNodeChangeMsg(node.BatchParentID, domain.NodeChange{Status: domain.NodeRunning, IsResumed: true}))
		return nil
	}

	s.publisher.Publish(domain.NewFlowChangeMsg(node.FlowID, domain.FlowChange{Status: domain.FlowRunning, IsResumed: true}))
	return nil
}

// handleCompleted emits the billing event, then converges the completion
// up toward the batch parent, or, for a root node, toward the flow by
// recomputing remaining entry nodes.
func (s *NodeScheduler) handleCompleted(ctx context.Context, node *domain.NodeInstance) error {
	if s.billing != nil {
		if err := s.billing.EmitCompletion(ctx, node.ID); err != nil {
			return fmt.Errorf("scheduler: emitting billing event for node %q: %w", node.ID, err)
		}
	}

	peers, err := s.siblings(ctx, node)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if p.Status.BlocksCompletedConvergence() {
			return nil
		}
	}

	if node.BatchParentID != "" {
		s.publisher.Publish(domain.NewNodeChangeMsg(node.BatchParentID, domain.NodeChange{Status: domain.NodeCompleted}))
		return nil
	}

	return s.convergeFlowCompletion(ctx, node)
}

// convergeFlowCompletion recomputes, for a root node's completion, which
// still-Standby flow nodes are now ready to run; if none are, the flow
// itself is complete.
func (s *NodeScheduler) convergeFlowCompletion(ctx context.Context, node *domain.NodeInstance) error {
	wf, err := s.workflows.Get(ctx, node.FlowID)
	if err != nil {
		return fmt.Errorf("scheduler: loading flow %q: %w", node.FlowID, err)
	}
	flowNodes, err := s.nodes.ListByFlow(ctx, node.FlowID)
	if err != nil {
		return fmt.Errorf("scheduler: listing nodes for flow %q: %w", node.FlowID, err)
	}

	statuses := make(map[string]domain.NodeStatus, len(flowNodes))
	for _, n := range flowNodes {
		statuses[n.ID] = n.Status
	}
	statuses[node.ID] = domain.NodeCompleted

	ready := readyStandbyNodes(wf.Spec, statuses, node.ID)
	if len(ready) == 0 {
		s.publisher.Publish(domain.NewFlowChangeMsg(node.FlowID, domain.FlowChange{Status: domain.FlowCompleted}))
		return nil
	}
	for _, id := range ready {
		s.publisher.Publish(domain.NewNodeChangeMsg(id, domain.NodeChange{Status: domain.NodePending}))
	}
	return nil
}

// convergeSiblings implements the shared Terminated/Paused convergence
// shape: if every sibling satisfies convergesFn, forward status to the
// batch parent, or to the flow for a root node.
func (s *NodeScheduler) convergeSiblings(ctx context.Context, node *domain.NodeInstance, convergesFn func(domain.NodeStatus) bool, status domain.NodeStatus) error {
	peers, err := s.siblings(ctx, node)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if !convergesFn(p.Status) {
			return nil
		}
	}

	if node.BatchParentID != "" {
		s.publisher.Publish(domain.NewNodeChangeMsg(node.BatchParentID, domain.NodeChange{Status: status}))
		return nil
	}

	flowStatus := domain.FlowTerminated
	if status == domain.NodePaused {
		flowStatus = domain.FlowPaused
	}
	s.publisher.Publish(domain.NewFlowChangeMsg(node.FlowID, domain.FlowChange{Status: flowStatus}))
	return nil
}

// forwardToTasks publishes a TaskChange for every one of node's tasks
// currently in one of fromStatuses.
func (s *NodeScheduler) forwardToTasks(ctx context.Context, nodeID string, target domain.TaskStatus, fromStatuses ...domain.TaskStatus) error {
	tasks, err := s.tasks.ListByNode(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("scheduler: listing tasks for node %q: %w", nodeID, err)
	}
	from := make(map[domain.TaskStatus]bool, len(fromStatuses))
	for _, st := range fromStatuses {
		from[st] = true
	}
	for _, t := range tasks {
		if from[t.Status] {
			s.publisher.Publish(domain.NewTaskChangeMsg(t.ID, domain.TaskChange{Status: target}))
		}
	}
	return nil
}

// siblings returns node's batch-parent siblings if it has a batch parent,
// else its flow-level peers — the two-level sibling set spec.md §4.6's
// Running{is_resumed=true}/Completed/Terminated/Paused handlers all
// consult, excluding node itself.
func (s *NodeScheduler) siblings(ctx context.Context, node *domain.NodeInstance) ([]*domain.NodeInstance, error) {
	var peers []*domain.NodeInstance
	var err error
	if node.BatchParentID != "" {
		peers, err = s.nodes.ListByBatchParent(ctx, node.BatchParentID)
	} else {
		peers, err = s.nodes.ListByFlow(ctx, node.FlowID)
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler: listing siblings of %q: %w", node.ID, err)
	}

	filtered := peers[:0]
	for _, p := range peers {
		if p.ID != node.ID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
