// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package repository

import (
	"context"
	"errors"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"gorm.io/gorm"
)

// TaskRepository persists Task aggregates.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	CreateBatch(ctx context.Context, ts []*domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.TaskStatus) (bool, error)
	ListByNode(ctx context.Context, nodeInstanceID string) ([]*domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error)
}

type gormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a TaskRepository over db.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormTaskRepository) CreateBatch(ctx context.Context, ts []*domain.Task) error {
	if len(ts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ts).Error
}

func (r *gormTaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormTaskRepository) Update(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *gormTaskRepository) UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.TaskStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{"status": newStatus})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormTaskRepository) ListByNode(ctx context.Context, nodeInstanceID string) ([]*domain.Task, error) {
	var ts []*domain.Task
	err := r.db.WithContext(ctx).Where("node_instance_id = ?", nodeInstanceID).Order("created_at asc").Find(&ts).Error
	return ts, err
}

func (r *gormTaskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	var ts []*domain.Task
	q := r.db.WithContext(ctx).Where("status = ?", status)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&ts).Error
	return ts, err
}
