// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package repository implements the Repositories component (C2): GORM over
// Postgres for the three transactional aggregates (WorkflowInstance,
// NodeInstance, Task), and a Redis-backed leased key/value store for the
// move/multipart/text repositories that only need a TTL and a
// glob-style scan.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get* methods when no row matches.
var ErrNotFound = errors.New("repository: not found")

// WorkflowRepository persists WorkflowInstance aggregates.
type WorkflowRepository interface {
	Create(ctx context.Context, w *domain.WorkflowInstance) error
	Get(ctx context.Context, id string) (*domain.WorkflowInstance, error)
	Update(ctx context.Context, w *domain.WorkflowInstance) error
	// UpdateStatusWithLock performs an optimistic-lock conditional update:
	// it only writes Status if the row's current status still
	// equals expectedStatus, returning false (no error) if another writer
	// already moved it on.
	UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.FlowStatus) (bool, error)
	// UpdateSpecWithLock conditionally overwrites a flow's persisted spec:
	// it only writes spec/LastModified if the row's LastModified still
	// equals expectedLastModified, returning false (no error) if another
	// writer already saved a newer spec in between.
	UpdateSpecWithLock(ctx context.Context, id string, expectedLastModified time.Time, spec domain.WorkflowSpec) (bool, error)
	ListByStatus(ctx context.Context, status domain.FlowStatus) ([]*domain.WorkflowInstance, error)
	Delete(ctx context.Context, id string) error
}

type gormWorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository builds a WorkflowRepository over db.
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &gormWorkflowRepository{db: db}
}

func (r *gormWorkflowRepository) Create(ctx context.Context, w *domain.WorkflowInstance) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *gormWorkflowRepository) Get(ctx context.Context, id string) (*domain.WorkflowInstance, error) {
	var w domain.WorkflowInstance
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *gormWorkflowRepository) Update(ctx context.Context, w *domain.WorkflowInstance) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *gormWorkflowRepository) UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.FlowStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.WorkflowInstance{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{"status": newStatus})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormWorkflowRepository) UpdateSpecWithLock(ctx context.Context, id string, expectedLastModified time.Time, spec domain.WorkflowSpec) (bool, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return false, err
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.WorkflowInstance{}).
		Where("id = ? AND last_modified = ?", id, expectedLastModified).
		Updates(map[string]interface{}{"spec": string(specJSON), "last_modified": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormWorkflowRepository) ListByStatus(ctx context.Context, status domain.FlowStatus) ([]*domain.WorkflowInstance, error) {
	var ws []*domain.WorkflowInstance
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&ws).Error
	return ws, err
}

func (r *gormWorkflowRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.WorkflowInstance{}).Error
}
