// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package aitaskqueue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amd-aig/workflow-engine/pkg/aitopics"
)

func newTestQueue(t *testing.T) *DBQueue {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Task{}))
	return NewDBQueue(db, nil)
}

func TestDBQueue_PublishAndClaim(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Publish(ctx, "deploy-software", json.RawMessage(`{"x":1}`), aitopics.RequestContext{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	task, err := q.ClaimTask(ctx, []string{"deploy-software"}, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, TaskStatusProcessing, task.Status)

	_, err = q.ClaimTask(ctx, []string{"deploy-software"}, "agent-2")
	assert.ErrorIs(t, err, ErrTaskNotFound, "a second claimant must never see the same task")
}

func TestDBQueue_CompleteAndGetResult(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Publish(ctx, "t1", json.RawMessage(`{}`), aitopics.RequestContext{})
	require.NoError(t, err)

	require.NoError(t, q.CompleteTask(ctx, id, &aitopics.Response{Payload: json.RawMessage(`"done"`)}))

	result, err := q.GetResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, aitopics.StatusSuccess, result.Status)
}

func TestDBQueue_FailTask_RetriesUntilMaxRetries(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.PublishWithOptions(ctx, &PublishOptions{Topic: "t2", MaxRetries: 1})
	require.NoError(t, err)

	require.NoError(t, q.FailTask(ctx, id, 500, "boom"))
	task, err := q.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, task.Status, "still has retries left")

	require.NoError(t, q.FailTask(ctx, id, 500, "boom again"))
	task, err = q.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status, "retries exhausted")
}

func TestDBQueue_CancelTask(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Publish(ctx, "t3", json.RawMessage(`{}`), aitopics.RequestContext{})
	require.NoError(t, err)
	require.NoError(t, q.CancelTask(ctx, id))

	task, err := q.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusCancelled, task.Status)

	assert.Error(t, q.CancelTask(ctx, id), "an already-terminal task cannot be cancelled again")
}

func TestDBQueue_HandleTimeouts(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	task := &Task{ID: "stuck", Topic: "t4", Status: TaskStatusProcessing, TimeoutAt: time.Now().Add(-time.Minute)}
	require.NoError(t, q.db.Create(task).Error)

	n, err := q.HandleTimeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := q.GetTask(ctx, "stuck")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPending, got.Status)
}

func TestDBQueue_ListAndCountTasks(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Publish(ctx, "t5", json.RawMessage(`{}`), aitopics.RequestContext{})
	require.NoError(t, err)
	_, err = q.Publish(ctx, "t6", json.RawMessage(`{}`), aitopics.RequestContext{})
	require.NoError(t, err)

	list, err := q.ListTasks(ctx, &TaskFilter{Topic: "t5"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := q.CountTasks(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDBQueue_Cleanup(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	old := &Task{ID: "old", Topic: "t7", Status: TaskStatusCompleted, CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, q.db.Create(old).Error)

	n, err := q.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = q.GetTask(ctx, "old")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
