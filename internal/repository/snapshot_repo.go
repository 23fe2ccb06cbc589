// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package repository

import (
	"context"
	"errors"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"gorm.io/gorm"
)

// FileMetaRepository persists content-addressed FileMeta rows, the
// source of truth the flash-upload dedup check consults by hash.
type FileMetaRepository interface {
	Create(ctx context.Context, m *domain.FileMeta) error
	Get(ctx context.Context, id string) (*domain.FileMeta, error)
	GetByHash(ctx context.Context, hash string) (*domain.FileMeta, error)
	EnsureCreated(ctx context.Context, m *domain.FileMeta) (*domain.FileMeta, error)
}

type gormFileMetaRepository struct {
	db *gorm.DB
}

// NewFileMetaRepository builds a FileMetaRepository over db.
func NewFileMetaRepository(db *gorm.DB) FileMetaRepository {
	return &gormFileMetaRepository{db: db}
}

func (r *gormFileMetaRepository) Create(ctx context.Context, m *domain.FileMeta) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormFileMetaRepository) Get(ctx context.Context, id string) (*domain.FileMeta, error) {
	var m domain.FileMeta
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// EnsureCreated inserts m and returns it, unless (hash,algo) was already
// won by a concurrent inserter — per spec, FileMeta is insert-only keyed
// by (hash,algo) and the unique constraint on Hash resolves concurrent
// first-inserts; a loser here simply reads back the winner's row instead
// of treating the conflict as an error.
func (r *gormFileMetaRepository) EnsureCreated(ctx context.Context, m *domain.FileMeta) (*domain.FileMeta, error) {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		existing, getErr := r.GetByHash(ctx, m.Hash)
		if getErr != nil {
			return nil, err
		}
		return existing, nil
	}
	return m, nil
}

func (r *gormFileMetaRepository) GetByHash(ctx context.Context, hash string) (*domain.FileMeta, error) {
	var m domain.FileMeta
	err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// SnapshotRepository persists durable Snapshot rows: once a node's output
// is snapshotted it outlives the node's own lifecycle, so this repository
// is Postgres-backed rather than leased.
type SnapshotRepository interface {
	Create(ctx context.Context, s *domain.Snapshot) error
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	ListByNode(ctx context.Context, nodeID string) ([]*domain.Snapshot, error)
	ListByNodeAndFile(ctx context.Context, nodeID, fileID string) ([]*domain.Snapshot, error)
}

type gormSnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository builds a SnapshotRepository over db.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &gormSnapshotRepository{db: db}
}

func (r *gormSnapshotRepository) Create(ctx context.Context, s *domain.Snapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormSnapshotRepository) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormSnapshotRepository) ListByNode(ctx context.Context, nodeID string) ([]*domain.Snapshot, error) {
	var ss []*domain.Snapshot
	err := r.db.WithContext(ctx).Where("node_id = ?", nodeID).Order("timestamp asc").Find(&ss).Error
	return ss, err
}

// ListByNodeAndFile returns every snapshot ever taken of the given
// node/file slot, oldest first: a node's output can be snapshotted more
// than once across retries or re-runs, and callers (e.g. a later flow
// replaying against a specific prior run) need every timestamp, not just
// the latest.
func (r *gormSnapshotRepository) ListByNodeAndFile(ctx context.Context, nodeID, fileID string) ([]*domain.Snapshot, error) {
	var ss []*domain.Snapshot
	err := r.db.WithContext(ctx).
		Where("node_id = ? AND file_id = ?", nodeID, fileID).
		Order("timestamp asc").
		Find(&ss).Error
	return ss, err
}
