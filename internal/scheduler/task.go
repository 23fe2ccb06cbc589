// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
	"github.com/amd-aig/workflow-engine/pkg/aitopics"
)

// TaskDispatcher is the subset of Dispatcher the TaskScheduler depends
// on, kept as an interface so handler tests can assert on outbound sends
// without a real agent queue.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, topic string, body interface{}, reqCtx aitopics.RequestContext) (string, error)
}

// TaskScheduler handles TaskChange messages dispatched from the Status
// Bus for a Task (spec.md §4.6's task-level handler).
type TaskScheduler struct {
	tasks      repository.TaskRepository
	dispatcher TaskDispatcher
	publisher  Publisher
}

// NewTaskScheduler builds a TaskScheduler over its task repository, the
// outbound dispatcher, and the bus it publishes further transitions onto.
func NewTaskScheduler(tasks repository.TaskRepository, dispatcher TaskDispatcher, publisher Publisher) *TaskScheduler {
	return &TaskScheduler{tasks: tasks, dispatcher: dispatcher, publisher: publisher}
}

// Change is the external entry point: set-only update of the row (fields
// absent from change are left untouched, matching the set-only semantics
// spec.md §4.6 calls out for Task transitions), then the per-status
// handler.
func (s *TaskScheduler) Change(ctx context.Context, taskID string, change domain.TaskChange) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return fmt.Errorf("scheduler: loading task %q: %w", taskID, err)
	}

	task.Status = change.Status
	if change.Message != "" {
		task.Message = change.Message
	}
	if change.UsedResources != nil {
		task.UsedResources = change.UsedResources
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("scheduler: saving task %q: %w", taskID, err)
	}
	return s.HandleChanged(ctx, task, change)
}

// HandleChanged runs the handler for change.Status against the
// already-persisted task.
func (s *TaskScheduler) HandleChanged(ctx context.Context, task *domain.Task, change domain.TaskChange) error {
	switch change.Status {
	case domain.TaskQueuing:
		return nil // agent-local queue, nothing to do here
	case domain.TaskRunning:
		if change.IsRecovered {
			return s.handleRunningRecovered(ctx, task)
		}
		return s.handleRunningFresh(ctx, task)
	case domain.TaskCompleted:
		return s.handleCompleted(ctx, task)
	case domain.TaskFailed:
		s.publisher.Publish(domain.NewNodeChangeMsg(task.NodeInstanceID, domain.NodeChange{Status: domain.NodeFailed, Message: change.Message}))
		return nil
	case domain.TaskTerminating, domain.TaskPausing, domain.TaskResuming:
		_, err := s.dispatcher.Dispatch(ctx, task.QueueTopic, controlBody(task, change.Status), aitopics.RequestContext{})
		return err
	case domain.TaskTerminated:
		return s.convergeSiblings(ctx, task, domain.TaskStatus.ConvergesTerminated, domain.NodeTerminated)
	case domain.TaskPaused:
		return s.convergeSiblings(ctx, task, domain.TaskStatus.ConvergesPaused, domain.NodePaused)
	default:
		return fmt.Errorf("scheduler: unhandled task status %q", change.Status)
	}
}

// controlCommands maps the node-forwarded task statuses to the wire
// command name sent on the queue topic, per spec.md §4.6's
// Cancel(type)/Pause(type)/Resume(type) control messages.
var controlCommands = map[domain.TaskStatus]string{
	domain.TaskTerminating: "Cancel",
	domain.TaskPausing:     "Pause",
	domain.TaskResuming:    "Resume",
}

// controlBody builds the TaskControlBody for a Cancel/Pause/Resume signal
// targeting task.
func controlBody(task *domain.Task, status domain.TaskStatus) domain.TaskControlBody {
	return domain.TaskControlBody{TaskID: task.ID, Type: task.Type, Command: controlCommands[status]}
}

// handleRunningFresh sends the task body to the node's queue topic,
// retrying up to 5 times; on exhaustion it reports Failed instead of
// propagating the transport error directly.
func (s *TaskScheduler) handleRunningFresh(ctx context.Context, task *domain.Task) error {
	if _, err := s.dispatcher.Dispatch(ctx, task.QueueTopic, task.Body, aitopics.RequestContext{}); err != nil {
		return s.Change(ctx, task.ID, domain.TaskChange{Status: domain.TaskFailed, Message: "Failed to send task to agent."})
	}
	return nil
}

// handleRunningRecovered converges a task recovered as already-running:
// once every sibling task has left the set that blocks convergence, it
// reports the node as resumed.
func (s *TaskScheduler) handleRunningRecovered(ctx context.Context, task *domain.Task) error {
	peers, err := s.siblingTasks(ctx, task)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if p.Status.BlocksSiblingConvergence() {
			return nil
		}
	}
	s.publisher.Publish(domain.NewNodeChangeMsg(task.NodeInstanceID, domain.NodeChange{Status: domain.NodeRunning, IsResumed: true}))
	return nil
}

// handleCompleted waits for every sibling to leave the set that blocks
// Completed-convergence, then either advances the node's pipeline to the
// next Standby step-type or reports the node itself Completed once no
// step remains.
func (s *TaskScheduler) handleCompleted(ctx context.Context, task *domain.Task) error {
	peers, err := s.siblingTasks(ctx, task)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if p.Status.BlocksSiblingConvergence() {
			return nil
		}
	}

	all, err := s.tasks.ListByNode(ctx, task.NodeInstanceID)
	if err != nil {
		return fmt.Errorf("scheduler: listing tasks for node %q: %w", task.NodeInstanceID, err)
	}

	var next *domain.Task
	for _, t := range all {
		if t.Status == domain.TaskStandby {
			next = t
			break
		}
	}
	if next == nil {
		// task.UsedResources (TaskUsedResource) and NodeChange's resource
		// field (ResourceUsageSample) are distinct shapes — a task's final
		// accounting report isn't a point-in-time sample — so only the
		// message accumulates onto the node here.
		s.publisher.Publish(domain.NewNodeChangeMsg(task.NodeInstanceID, domain.NodeChange{Status: domain.NodeCompleted, Message: task.Message}))
		return nil
	}

	for _, t := range all {
		if t.Status == domain.TaskStandby && t.Type == next.Type {
			s.publisher.Publish(domain.NewTaskChangeMsg(t.ID, domain.TaskChange{Status: domain.TaskRunning}))
		}
	}
	return nil
}

// convergeSiblings implements the shared Terminated/Paused convergence
// shape: if every sibling task satisfies convergesFn, publish the node's
// corresponding status.
func (s *TaskScheduler) convergeSiblings(ctx context.Context, task *domain.Task, convergesFn func(domain.TaskStatus) bool, nodeStatus domain.NodeStatus) error {
	peers, err := s.siblingTasks(ctx, task)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if !convergesFn(p.Status) {
			return nil
		}
	}
	s.publisher.Publish(domain.NewNodeChangeMsg(task.NodeInstanceID, domain.NodeChange{Status: nodeStatus}))
	return nil
}

// siblingTasks returns task's node-level peers, excluding task itself.
func (s *TaskScheduler) siblingTasks(ctx context.Context, task *domain.Task) ([]*domain.Task, error) {
	all, err := s.tasks.ListByNode(ctx, task.NodeInstanceID)
	if err != nil {
		return nil, fmt.Errorf("scheduler: listing siblings of task %q: %w", task.ID, err)
	}
	filtered := all[:0]
	for _, t := range all {
		if t.ID != task.ID {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
