// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/pkg/aiclient"
	"github.com/amd-aig/workflow-engine/pkg/aitaskqueue"
	"github.com/amd-aig/workflow-engine/pkg/aitopics"
)

// stubQueue implements aitaskqueue.Queue, recording Publish calls and
// failing calls up to failTimes before succeeding, or always, per err.
type stubQueue struct {
	publishCalls int
	failTimes    int
	err          error
	lastPayload  json.RawMessage
}

func (q *stubQueue) Publish(_ context.Context, _ string, payload json.RawMessage, _ aitopics.RequestContext) (string, error) {
	q.publishCalls++
	q.lastPayload = payload
	if q.publishCalls <= q.failTimes {
		return "", q.err
	}
	return "queue-task-1", nil
}

func (q *stubQueue) PublishWithOptions(context.Context, *aitaskqueue.PublishOptions) (string, error) {
	return "", nil
}
func (q *stubQueue) GetTask(context.Context, string) (*aitaskqueue.Task, error) { return nil, nil }
func (q *stubQueue) GetResult(context.Context, string) (*aitopics.Response, error) {
	return nil, nil
}
func (q *stubQueue) ClaimTask(context.Context, []string, string) (*aitaskqueue.Task, error) {
	return nil, nil
}
func (q *stubQueue) CompleteTask(context.Context, string, *aitopics.Response) error { return nil }
func (q *stubQueue) FailTask(context.Context, string, int, string) error            { return nil }
func (q *stubQueue) CancelTask(context.Context, string) error                       { return nil }
func (q *stubQueue) ListTasks(context.Context, *aitaskqueue.TaskFilter) ([]*aitaskqueue.Task, error) {
	return nil, nil
}
func (q *stubQueue) CountTasks(context.Context, *aitaskqueue.TaskFilter) (int64, error) {
	return 0, nil
}
func (q *stubQueue) HandleTimeouts(context.Context) (int, error)          { return 0, nil }
func (q *stubQueue) Cleanup(context.Context, time.Duration) (int, error) { return 0, nil }

func TestDispatcher_Dispatch_Success_MarshalsBody(t *testing.T) {
	queue := &stubQueue{}
	d := NewDispatcher(queue)

	body := domain.StartTaskBody{Type: domain.TaskExecuteUsecase, ExecuteUsecase: &domain.ExecuteUsecaseBody{Name: "run"}}
	id, err := d.Dispatch(context.Background(), "agent-q", body, aitopics.RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "queue-task-1", id)
	assert.Equal(t, 1, queue.publishCalls)

	var decoded domain.StartTaskBody
	require.NoError(t, json.Unmarshal(queue.lastPayload, &decoded))
	assert.Equal(t, domain.TaskExecuteUsecase, decoded.Type)
}

func TestDispatcher_Dispatch_NonRetryableError_FailsImmediately(t *testing.T) {
	queue := &stubQueue{failTimes: 5, err: aiclient.ErrInvalidRequest}
	d := NewDispatcher(queue)

	_, err := d.Dispatch(context.Background(), "agent-q", domain.StartTaskBody{}, aitopics.RequestContext{})
	assert.Error(t, err)
	assert.Equal(t, 1, queue.publishCalls)
}
