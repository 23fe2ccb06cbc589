// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

type stubCompiler struct {
	bodies []domain.StartTaskBody
	err    error
}

func (c *stubCompiler) Compile(_ context.Context, _ *domain.NodeInstance) ([]domain.StartTaskBody, error) {
	return c.bodies, c.err
}

type stubBilling struct {
	emitted []string
	err     error
}

func (b *stubBilling) EmitCompletion(_ context.Context, nodeID string) error {
	b.emitted = append(b.emitted, nodeID)
	return b.err
}

func TestNodeScheduler_Pending_CompilesAndStartsFirstTask(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", QueueID: "q1"}
	nodes := newStubNodeRepo(node)
	tasks := newStubTaskRepo()
	compiler := &stubCompiler{bodies: []domain.StartTaskBody{
		{Type: domain.TaskDeploySoftware},
		{Type: domain.TaskExecuteUsecase},
	}}
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, tasks, compiler, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodePending})
	require.NoError(t, err)

	created, err := tasks.ListByNode(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, ts := range created {
		assert.Equal(t, domain.TaskStandby, ts.Status)
		assert.Equal(t, "q1", ts.QueueTopic)
	}

	require.Len(t, pub.published, 1)
	assert.Equal(t, domain.ScopeTask, pub.published[0].Scope)
	assert.Equal(t, domain.TaskRunning, pub.published[0].Task.Status)
}

func TestNodeScheduler_Pending_CompileError_PublishesFailed(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1"}
	nodes := newStubNodeRepo(node)
	compiler := &stubCompiler{err: assert.AnError}
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), compiler, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodePending})
	require.NoError(t, err)

	changes := pub.nodeChanges("n1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.NodeFailed, changes[0].Status)
}

func TestNodeScheduler_RunningFresh_PublishesFlowRunning(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1"}
	nodes := newStubNodeRepo(node)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeRunning})
	require.NoError(t, err)

	changes := pub.flowChanges("flow1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.FlowRunning, changes[0].Status)
	assert.False(t, changes[0].IsResumed)
}

func TestNodeScheduler_RunningResumed_WaitsForBatchSiblings(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeResuming}
	sibling := &domain.NodeInstance{ID: "n2", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeResuming}
	nodes := newStubNodeRepo(node, sibling)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeRunning, IsResumed: true})
	require.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestNodeScheduler_RunningResumed_AllSiblingsDone_ConvergesToParent(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeResuming}
	sibling := &domain.NodeInstance{ID: "n2", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeRunning}
	nodes := newStubNodeRepo(node, sibling)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeRunning, IsResumed: true})
	require.NoError(t, err)

	changes := pub.nodeChanges("p1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.NodeRunning, changes[0].Status)
	assert.True(t, changes[0].IsResumed)
}

func TestNodeScheduler_Completed_EmitsBillingThenConvergesToParent(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", BatchParentID: "p1"}
	sibling := &domain.NodeInstance{ID: "n2", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeCompleted}
	nodes := newStubNodeRepo(node, sibling)
	billing := &stubBilling{}
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, billing, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeCompleted})
	require.NoError(t, err)

	assert.Equal(t, []string{"n1"}, billing.emitted)
	changes := pub.nodeChanges("p1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.NodeCompleted, changes[0].Status)
}

func TestNodeScheduler_Completed_BlockedBySibling_NoEmission(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", BatchParentID: "p1"}
	sibling := &domain.NodeInstance{ID: "n2", FlowID: "flow1", BatchParentID: "p1", Status: domain.NodeRunning}
	nodes := newStubNodeRepo(node, sibling)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, &stubBilling{}, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeCompleted})
	require.NoError(t, err)
	assert.Empty(t, pub.nodeChanges("p1"))
	assert.Empty(t, pub.flowChanges("flow1"))
}

func TestNodeScheduler_Completed_RootNode_RecomputesReadyEntries(t *testing.T) {
	wf := &domain.WorkflowInstance{ID: "flow1", Spec: diamondSpec()}
	nodeA := &domain.NodeInstance{ID: "A", FlowID: "flow1"}
	nodeB := &domain.NodeInstance{ID: "B", FlowID: "flow1", Status: domain.NodeStandby}
	nodeC := &domain.NodeInstance{ID: "C", FlowID: "flow1", Status: domain.NodeStandby}
	nodeD := &domain.NodeInstance{ID: "D", FlowID: "flow1", Status: domain.NodeStandby}

	nodes := newStubNodeRepo(nodeA, nodeB, nodeC, nodeD)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(wf), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "A", domain.NodeChange{Status: domain.NodeCompleted})
	require.NoError(t, err)

	require.Len(t, pub.nodeChanges("B"), 1)
	require.Len(t, pub.nodeChanges("C"), 1)
	assert.Empty(t, pub.nodeChanges("D")) // still blocked on C
	assert.Empty(t, pub.flowChanges("flow1"))
}

func TestNodeScheduler_Completed_RootNode_NoReadyEntries_CompletesFlow(t *testing.T) {
	wf := &domain.WorkflowInstance{ID: "flow1", Spec: domain.WorkflowSpec{Nodes: []domain.NodeSpec{{ID: "A"}}}}
	nodeA := &domain.NodeInstance{ID: "A", FlowID: "flow1"}
	nodes := newStubNodeRepo(nodeA)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(wf), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "A", domain.NodeChange{Status: domain.NodeCompleted})
	require.NoError(t, err)

	changes := pub.flowChanges("flow1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.FlowCompleted, changes[0].Status)
}

func TestNodeScheduler_Terminating_ForwardsToLiveTasksOnly(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1"}
	running := &domain.Task{ID: "t1", NodeInstanceID: "n1", Status: domain.TaskRunning}
	standby := &domain.Task{ID: "t2", NodeInstanceID: "n1", Status: domain.TaskStandby}
	nodes := newStubNodeRepo(node)
	tasks := newStubTaskRepo(running, standby)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, tasks, nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeTerminating})
	require.NoError(t, err)

	require.Len(t, pub.taskChanges("t1"), 1)
	assert.Equal(t, domain.TaskTerminating, pub.taskChanges("t1")[0].Status)
	assert.Empty(t, pub.taskChanges("t2"))
}

func TestNodeScheduler_Terminated_ConvergesToFlowWhenNoParent(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1"}
	sibling := &domain.NodeInstance{ID: "n2", FlowID: "flow1", Status: domain.NodeStandby}
	nodes := newStubNodeRepo(node, sibling)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{Status: domain.NodeTerminated})
	require.NoError(t, err)

	changes := pub.flowChanges("flow1")
	require.Len(t, changes, 1)
	assert.Equal(t, domain.FlowTerminated, changes[0].Status)
}

func TestNodeScheduler_DoNotUpdateStatus_MergesLogWithoutStatusChange(t *testing.T) {
	node := &domain.NodeInstance{ID: "n1", FlowID: "flow1", Status: domain.NodeRunning, Log: "a\n"}
	nodes := newStubNodeRepo(node)
	pub := &stubPublisher{}
	s := NewNodeScheduler(newStubWorkflowRepo(), nodes, newStubTaskRepo(), nil, nil, pub)

	err := s.Change(context.Background(), "n1", domain.NodeChange{
		Status:            domain.NodeCompleted,
		Message:           "b\n",
		DoNotUpdateStatus: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NodeRunning, node.Status)
	assert.Equal(t, "a\nb\n", node.Log)
	assert.Empty(t, pub.published)
}
