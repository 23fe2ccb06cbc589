// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package domain holds the closed set of aggregate types the workflow engine
// schedules over: WorkflowInstance, NodeInstance, Task, and their leased
// file-movement companions. Status values are closed string enums rather
// than open trait objects, per the target's tagged-variant design.
package domain

// FlowStatus is the lifecycle state of a WorkflowInstance.
type FlowStatus string

const (
	FlowCreated     FlowStatus = "Created"
	FlowPending     FlowStatus = "Pending"
	FlowRunning     FlowStatus = "Running"
	FlowPaused      FlowStatus = "Paused"
	FlowPausing     FlowStatus = "Pausing"
	FlowRecovering  FlowStatus = "Recovering"
	FlowTerminating FlowStatus = "Terminating"
	FlowTerminated  FlowStatus = "Terminated"
	FlowCompleted   FlowStatus = "Completed"
	FlowFailed      FlowStatus = "Failed"
)

// IsTerminal reports whether no further FlowStatus transition is legal.
func (s FlowStatus) IsTerminal() bool {
	switch s {
	case FlowCompleted, FlowFailed, FlowTerminated:
		return true
	default:
		return false
	}
}

// NodeStatus is the lifecycle state of a NodeInstance.
type NodeStatus string

const (
	NodeCreated     NodeStatus = "Created"
	NodeStandby     NodeStatus = "Standby"
	NodePending     NodeStatus = "Pending"
	NodeRunning     NodeStatus = "Running"
	NodePausing     NodeStatus = "Pausing"
	NodePaused      NodeStatus = "Paused"
	NodeResuming    NodeStatus = "Resuming"
	NodeTerminating NodeStatus = "Terminating"
	NodeTerminated  NodeStatus = "Terminated"
	NodeCompleted   NodeStatus = "Completed"
	NodeFailed      NodeStatus = "Failed"
)

// IsTerminal reports whether the node has left the scheduler's active set.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeCompleted, NodeFailed, NodeTerminated:
		return true
	default:
		return false
	}
}

// nonTerminalForCompleted is the sibling-status set that blocks a
// Completed-sibling from propagating to its parent/flow (spec §4.6,
// Node.Completed handler): {Resuming,Paused,Running,Terminating,Terminated,
// Failed,Pausing,Pending}.
var nonTerminalForCompleted = map[NodeStatus]bool{
	NodeResuming:    true,
	NodePaused:      true,
	NodeRunning:     true,
	NodeTerminating: true,
	NodeTerminated:  true,
	NodeFailed:      true,
	NodePausing:     true,
	NodePending:     true,
}

// BlocksCompletedConvergence reports whether a sibling in this status
// prevents a Completed sibling from converging its parent/flow.
func (s NodeStatus) BlocksCompletedConvergence() bool {
	return nonTerminalForCompleted[s]
}

// convergesTerminated is the set {Standby,Terminated,Completed} from spec
// §4.6's Node.Terminated handler: a sibling in one of these statuses lets a
// Terminated sibling converge its parent. Failed is intentionally excluded
// (see DESIGN.md's "Sibling-Failed convergence" entry) — node-to-flow
// convergence is decided per spec §4 by each node aggregating to Failed
// independently rather than by a special-cased sibling check here.
var convergesTerminated = map[NodeStatus]bool{
	NodeStandby:    true,
	NodeTerminated: true,
	NodeCompleted:  true,
}

// ConvergesTerminated reports whether this status lets a Terminated sibling
// converge its parent/flow.
func (s NodeStatus) ConvergesTerminated() bool {
	return convergesTerminated[s]
}

// convergesPaused is {Completed,Standby,Paused} from spec §4.6's
// Node.Paused handler.
var convergesPaused = map[NodeStatus]bool{
	NodeCompleted: true,
	NodeStandby:   true,
	NodePaused:    true,
}

// ConvergesPaused reports whether this status lets a Paused sibling
// converge its parent/flow.
func (s NodeStatus) ConvergesPaused() bool {
	return convergesPaused[s]
}

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskStandby     TaskStatus = "Standby"
	TaskQueuing     TaskStatus = "Queuing"
	TaskRunning     TaskStatus = "Running"
	TaskPausing     TaskStatus = "Pausing"
	TaskPaused      TaskStatus = "Paused"
	TaskResuming    TaskStatus = "Resuming"
	TaskTerminating TaskStatus = "Terminating"
	TaskTerminated  TaskStatus = "Terminated"
	TaskCompleted   TaskStatus = "Completed"
	TaskFailed      TaskStatus = "Failed"
)

// IsTerminal reports whether the task has left the scheduler's active set.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskTerminated:
		return true
	default:
		return false
	}
}

// taskNonTerminalSansStandby is {Recovering,Paused,Completed,Terminating,
// Terminated,Failed,Pausing,Queuing} from spec §4.6's Task.Completed
// handler ("any sibling is non-terminal (same set as above sans Standby)").
// "Recovering" in the spec prose refers to a task mid Running{is_recovered}
// handling; it has no status of its own distinct from Running here, so the
// set below is the Task-status equivalent used by both the is_recovered
// convergence check and the Completed-sibling check.
var taskBlocksConvergence = map[TaskStatus]bool{
	TaskRunning:     true,
	TaskPaused:      true,
	TaskCompleted:   true,
	TaskTerminating: true,
	TaskTerminated:  true,
	TaskFailed:      true,
	TaskPausing:     true,
	TaskQueuing:     true,
}

// BlocksSiblingConvergence reports whether a sibling task in this status
// blocks Node-level convergence checks that exclude Standby.
func (s TaskStatus) BlocksSiblingConvergence() bool {
	return taskBlocksConvergence[s]
}

// taskConvergesTerminated is {Standby,Completed,Terminated,Paused} from
// spec §4.6's Task.Terminated handler.
var taskConvergesTerminated = map[TaskStatus]bool{
	TaskStandby:    true,
	TaskCompleted:  true,
	TaskTerminated: true,
	TaskPaused:     true,
}

func (s TaskStatus) ConvergesTerminated() bool {
	return taskConvergesTerminated[s]
}

// taskConvergesPaused is {Standby,Completed,Paused} from spec §4.6's
// Task.Paused handler.
var taskConvergesPaused = map[TaskStatus]bool{
	TaskStandby:   true,
	TaskCompleted: true,
	TaskPaused:    true,
}

func (s TaskStatus) ConvergesPaused() bool {
	return taskConvergesPaused[s]
}
