// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package aitaskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amd-aig/workflow-engine/pkg/aitopics"
)

// DBQueue is the default Queue implementation: Task rows persisted
// straight in the transactional database, claimed with a row-level
// UPDATE ... WHERE status = pending so concurrent claimants never
// double-claim. It needs no broker, matching the scheduler's own
// pattern of routing everything through the same store the rest of the
// engine already depends on.
type DBQueue struct {
	db     *gorm.DB
	config *QueueConfig
}

// NewDBQueue builds a DBQueue over db. A nil config falls back to
// DefaultQueueConfig.
func NewDBQueue(db *gorm.DB, config *QueueConfig) *DBQueue {
	if config == nil {
		config = DefaultQueueConfig()
	}
	return &DBQueue{db: db, config: config}
}

func (q *DBQueue) Publish(ctx context.Context, topic string, payload json.RawMessage, reqCtx aitopics.RequestContext) (string, error) {
	return q.PublishWithOptions(ctx, &PublishOptions{Topic: topic, Payload: payload, Context: reqCtx})
}

func (q *DBQueue) PublishWithOptions(ctx context.Context, opts *PublishOptions) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = q.config.DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = q.config.DefaultMaxRetries
	}

	task := &Task{
		ID:           uuid.New().String(),
		Topic:        opts.Topic,
		Status:       TaskStatusPending,
		Priority:     opts.Priority,
		InputPayload: opts.Payload,
		Context:      opts.Context,
		MaxRetries:   maxRetries,
		CreatedAt:    time.Now(),
		TimeoutAt:    time.Now().Add(timeout),
	}
	if err := task.BeforeSave(); err != nil {
		return "", err
	}
	if err := q.db.WithContext(ctx).Create(task).Error; err != nil {
		return "", err
	}
	return task.ID, nil
}

func (q *DBQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var t Task
	if err := q.db.WithContext(ctx).First(&t, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (q *DBQueue) GetResult(ctx context.Context, taskID string) (*aitopics.Response, error) {
	t, err := q.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.IsCompleted() {
		return nil, ErrTaskNotCompleted
	}
	if t.Status == TaskStatusFailed {
		return aitopics.NewErrorResponse(t.ID, t.ErrorCode, t.ErrorMessage), nil
	}
	return aitopics.NewSuccessResponse(t.ID, json.RawMessage(t.OutputPayload))
}

// ClaimTask atomically moves one pending task whose topic is in topics
// to processing and returns it, or ErrTaskNotFound when none are
// available. The claim itself is a conditional UPDATE rather than a
// SELECT-then-UPDATE, so two agents racing for the same topic can never
// both win.
func (q *DBQueue) ClaimTask(ctx context.Context, topics []string, agentID string) (*Task, error) {
	var t Task
	err := q.db.WithContext(ctx).
		Where("status = ? AND topic IN ?", TaskStatusPending, topics).
		Order("priority desc, created_at asc").
		First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	now := time.Now()
	res := q.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status = ?", t.ID, TaskStatusPending).
		Updates(map[string]interface{}{"status": TaskStatusProcessing, "agent_id": agentID, "started_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	t.Status = TaskStatusProcessing
	t.AgentID = agentID
	t.StartedAt = &now
	return &t, nil
}

func (q *DBQueue) CompleteTask(ctx context.Context, taskID string, result *aitopics.Response) error {
	payload, err := json.Marshal(result.Payload)
	if err != nil {
		return err
	}
	now := time.Now()
	return q.db.WithContext(ctx).Model(&Task{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"status":         TaskStatusCompleted,
		"output_payload": payload,
		"completed_at":   now,
	}).Error
}

func (q *DBQueue) FailTask(ctx context.Context, taskID string, errorCode int, errorMsg string) error {
	t, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	status := TaskStatusFailed
	updates := map[string]interface{}{
		"status":        status,
		"error_code":    errorCode,
		"error_message": errorMsg,
		"retry_count":   t.RetryCount + 1,
	}
	if t.RetryCount+1 <= t.MaxRetries {
		// Still retryable: reopen for another claim instead of settling
		// into a terminal state.
		updates["status"] = TaskStatusPending
	} else {
		now := time.Now()
		updates["completed_at"] = now
	}
	return q.db.WithContext(ctx).Model(&Task{}).Where("id = ?", taskID).Updates(updates).Error
}

func (q *DBQueue) CancelTask(ctx context.Context, taskID string) error {
	res := q.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND status IN ?", taskID, []TaskStatus{TaskStatusPending, TaskStatusProcessing}).
		Update("status", TaskStatusCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("aitaskqueue: task %q is not cancellable", taskID)
	}
	return nil
}

func (q *DBQueue) ListTasks(ctx context.Context, filter *TaskFilter) ([]*Task, error) {
	query := q.db.WithContext(ctx).Model(&Task{})
	query = applyTaskFilter(query, filter)
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var tasks []*Task
	if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (q *DBQueue) CountTasks(ctx context.Context, filter *TaskFilter) (int64, error) {
	var count int64
	query := applyTaskFilter(q.db.WithContext(ctx).Model(&Task{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyTaskFilter(query *gorm.DB, filter *TaskFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if len(filter.Topics) > 0 {
		query = query.Where("topic IN ?", filter.Topics)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// HandleTimeouts reopens every processing/pending task whose TimeoutAt
// has passed back to pending, so a stalled agent doesn't permanently
// strand it.
func (q *DBQueue) HandleTimeouts(ctx context.Context) (int, error) {
	res := q.db.WithContext(ctx).Model(&Task{}).
		Where("status IN ? AND timeout_at < ?", []TaskStatus{TaskStatusPending, TaskStatusProcessing}, time.Now()).
		Update("status", TaskStatusPending)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// Cleanup deletes completed/failed/cancelled tasks older than olderThan.
func (q *DBQueue) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res := q.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled}, cutoff).
		Delete(&Task{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
