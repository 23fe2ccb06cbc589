// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package repository

import (
	"context"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	moveLeaseSeconds      = 3600
	multipartLeaseSeconds = 3600
	textLeaseSeconds      = 300
)

// MoveRepository persists in-flight MoveRegistration rows for the
// duration of a single upload.
type MoveRepository struct {
	kv *LeasedKVRepository
}

// NewMoveRepository builds a MoveRepository over client.
func NewMoveRepository(client *redis.Client) *MoveRepository {
	return &MoveRepository{kv: NewLeasedKVRepository(client, "move", moveLeaseSeconds)}
}

func (r *MoveRepository) Put(ctx context.Context, m *domain.MoveRegistration) error {
	return r.kv.Put(ctx, m.ID, m)
}

func (r *MoveRepository) Get(ctx context.Context, id string) (*domain.MoveRegistration, error) {
	var m domain.MoveRegistration
	if err := r.kv.Get(ctx, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MoveRepository) Delete(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, id)
}

func (r *MoveRepository) ScanIDs(ctx context.Context) ([]string, error) {
	return r.kv.ScanIDs(ctx)
}

// ListByMeta returns every move registration declared against metaID.
// The same content hash may be registered by several destinations, all
// of which are satisfied by a single physical assembly.
func (r *MoveRepository) ListByMeta(ctx context.Context, metaID string) ([]*domain.MoveRegistration, error) {
	ids, err := r.ScanIDs(ctx)
	if err != nil {
		return nil, err
	}

	var out []*domain.MoveRegistration
	for _, id := range ids {
		m, err := r.Get(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		if m.MetaID == metaID {
			out = append(out, m)
		}
	}
	return out, nil
}

// MultipartRepository persists in-flight MultipartRegistration rows
// (chunk completion bitmasks) for the duration of a single upload.
type MultipartRepository struct {
	kv *LeasedKVRepository
}

// NewMultipartRepository builds a MultipartRepository over client.
func NewMultipartRepository(client *redis.Client) *MultipartRepository {
	return &MultipartRepository{kv: NewLeasedKVRepository(client, "multipart", multipartLeaseSeconds)}
}

func (r *MultipartRepository) Put(ctx context.Context, m *domain.MultipartRegistration) error {
	return r.kv.Put(ctx, m.MetaID, m)
}

func (r *MultipartRepository) Get(ctx context.Context, metaID string) (*domain.MultipartRegistration, error) {
	var m domain.MultipartRegistration
	if err := r.kv.Get(ctx, metaID, &m); err != nil {
		if err == ErrNotFound {
			return nil, &domain.MultipartNotFoundError{MetaID: metaID}
		}
		return nil, err
	}
	return &m, nil
}

func (r *MultipartRepository) Touch(ctx context.Context, metaID string) error {
	return r.kv.Touch(ctx, metaID)
}

func (r *MultipartRepository) Delete(ctx context.Context, metaID string) error {
	return r.kv.Delete(ctx, metaID)
}

func (r *MultipartRepository) ScanIDs(ctx context.Context) ([]string, error) {
	return r.kv.ScanIDs(ctx)
}

// TextRepository is a short-lived general-purpose leased string store,
// used for the text values of batch expansion and for the snapshot blob
// store's manifest entries.
type TextRepository struct {
	kv *LeasedKVRepository
}

// NewTextRepository builds a TextRepository over client.
func NewTextRepository(client *redis.Client) *TextRepository {
	return &TextRepository{kv: NewLeasedKVRepository(client, "text", textLeaseSeconds)}
}

func (r *TextRepository) Put(ctx context.Context, id, value string) error {
	return r.kv.Put(ctx, id, value)
}

func (r *TextRepository) Get(ctx context.Context, id string) (string, error) {
	var v string
	if err := r.kv.Get(ctx, id, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (r *TextRepository) Delete(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, id)
}
