// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package repository

import (
	"context"
	"errors"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"gorm.io/gorm"
)

// NodeRepository persists NodeInstance aggregates.
type NodeRepository interface {
	Create(ctx context.Context, n *domain.NodeInstance) error
	CreateBatch(ctx context.Context, ns []*domain.NodeInstance) error
	Get(ctx context.Context, id string) (*domain.NodeInstance, error)
	Update(ctx context.Context, n *domain.NodeInstance) error
	UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.NodeStatus) (bool, error)
	ListByFlow(ctx context.Context, flowID string) ([]*domain.NodeInstance, error)
	ListByBatchParent(ctx context.Context, batchParentID string) ([]*domain.NodeInstance, error)
	ListByStatus(ctx context.Context, status domain.NodeStatus) ([]*domain.NodeInstance, error)
}

type gormNodeRepository struct {
	db *gorm.DB
}

// NewNodeRepository builds a NodeRepository over db.
func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &gormNodeRepository{db: db}
}

func (r *gormNodeRepository) Create(ctx context.Context, n *domain.NodeInstance) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *gormNodeRepository) CreateBatch(ctx context.Context, ns []*domain.NodeInstance) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *gormNodeRepository) Get(ctx context.Context, id string) (*domain.NodeInstance, error) {
	var n domain.NodeInstance
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *gormNodeRepository) Update(ctx context.Context, n *domain.NodeInstance) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *gormNodeRepository) UpdateStatusWithLock(ctx context.Context, id string, expectedStatus, newStatus domain.NodeStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.NodeInstance{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{"status": newStatus})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormNodeRepository) ListByFlow(ctx context.Context, flowID string) ([]*domain.NodeInstance, error) {
	var ns []*domain.NodeInstance
	err := r.db.WithContext(ctx).Where("flow_id = ?", flowID).Find(&ns).Error
	return ns, err
}

// ListByBatchParent returns a batch parent's sub-nodes in creation order,
// so callers that need a stable sub-node index (e.g. FromBatchOutputs
// resolving a sibling's designated output) don't have to invent one.
func (r *gormNodeRepository) ListByBatchParent(ctx context.Context, batchParentID string) ([]*domain.NodeInstance, error) {
	var ns []*domain.NodeInstance
	err := r.db.WithContext(ctx).Where("batch_parent_id = ?", batchParentID).Order("created_at asc, id asc").Find(&ns).Error
	return ns, err
}

func (r *gormNodeRepository) ListByStatus(ctx context.Context, status domain.NodeStatus) ([]*domain.NodeInstance, error) {
	var ns []*domain.NodeInstance
	err := r.db.WithContext(ctx).Where("status = ?", status).Find(&ns).Error
	return ns, err
}
