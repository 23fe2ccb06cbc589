// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

// ChangeScope discriminates which aggregate a ChangeMsg reports a status
// change for.
type ChangeScope string

const (
	ScopeFlow ChangeScope = "Flow"
	ScopeNode ChangeScope = "Node"
	ScopeTask ChangeScope = "Task"
)

// FlowChange carries a WorkflowInstance status transition over the bus.
// IsResumed distinguishes a fresh Running transition from one that follows
// a Paused/Recovering round-trip, since the scheduler re-dispatches
// differently in each case.
type FlowChange struct {
	Status    FlowStatus `json:"status"`
	IsResumed bool       `json:"is_resumed,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// NodeChange carries a NodeInstance status transition over the bus.
// IsResumed, like FlowChange's, distinguishes a fresh Running from one
// following a Paused/Recovering round-trip. DoNotUpdateStatus lets a
// producer report a resource sample or log append without forcing a
// status write.
type NodeChange struct {
	Status            NodeStatus           `json:"status"`
	IsResumed         bool                 `json:"is_resumed,omitempty"`
	Message           string               `json:"message,omitempty"`
	UsedResources     *ResourceUsageSample `json:"used_resources,omitempty"`
	DoNotUpdateStatus bool                 `json:"do_not_update_status,omitempty"`
}

// TaskChange carries a Task status transition over the bus, posted by the
// executing agent (via TaskResult) or synthesized internally by the
// scheduler. IsRecovered marks a Running transition that resumes a task
// an agent reports as already in flight, rather than starting it fresh.
type TaskChange struct {
	Status        TaskStatus        `json:"status"`
	IsRecovered   bool              `json:"is_recovered,omitempty"`
	Message       string            `json:"message,omitempty"`
	UsedResources *TaskUsedResource `json:"used_resources,omitempty"`
}

// ChangeMsg is the single wire envelope the Status Bus dispatches: a
// target aggregate id plus exactly one of Flow/Node/Task change payloads,
// selected by Scope.
type ChangeMsg struct {
	ID    string      `json:"id"`
	Scope ChangeScope `json:"scope"`
	Flow  *FlowChange `json:"flow,omitempty"`
	Node  *NodeChange `json:"node,omitempty"`
	Task  *TaskChange `json:"task,omitempty"`
}

// NewFlowChangeMsg builds a ChangeMsg reporting a flow-scoped transition.
func NewFlowChangeMsg(flowID string, c FlowChange) ChangeMsg {
	return ChangeMsg{ID: flowID, Scope: ScopeFlow, Flow: &c}
}

// NewNodeChangeMsg builds a ChangeMsg reporting a node-scoped transition.
func NewNodeChangeMsg(nodeID string, c NodeChange) ChangeMsg {
	return ChangeMsg{ID: nodeID, Scope: ScopeNode, Node: &c}
}

// NewTaskChangeMsg builds a ChangeMsg reporting a task-scoped transition.
func NewTaskChangeMsg(taskID string, c TaskChange) ChangeMsg {
	return ChangeMsg{ID: taskID, Scope: ScopeTask, Task: &c}
}
