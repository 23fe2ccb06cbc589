// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// stubPublisher records every ChangeMsg published during a test instead
// of dispatching through a real bus.
type stubPublisher struct {
	published []domain.ChangeMsg
}

func (p *stubPublisher) Publish(msg domain.ChangeMsg) {
	p.published = append(p.published, msg)
}

func (p *stubPublisher) nodeChanges(nodeID string) []domain.NodeChange {
	var out []domain.NodeChange
	for _, m := range p.published {
		if m.Scope == domain.ScopeNode && m.ID == nodeID {
			out = append(out, *m.Node)
		}
	}
	return out
}

func (p *stubPublisher) flowChanges(flowID string) []domain.FlowChange {
	var out []domain.FlowChange
	for _, m := range p.published {
		if m.Scope == domain.ScopeFlow && m.ID == flowID {
			out = append(out, *m.Flow)
		}
	}
	return out
}

func (p *stubPublisher) taskChanges(taskID string) []domain.TaskChange {
	var out []domain.TaskChange
	for _, m := range p.published {
		if m.Scope == domain.ScopeTask && m.ID == taskID {
			out = append(out, *m.Task)
		}
	}
	return out
}

// stubWorkflowRepo is an in-memory repository.WorkflowRepository.
type stubWorkflowRepo struct {
	byID map[string]*domain.WorkflowInstance
}

func newStubWorkflowRepo(wfs ...*domain.WorkflowInstance) *stubWorkflowRepo {
	r := &stubWorkflowRepo{byID: map[string]*domain.WorkflowInstance{}}
	for _, w := range wfs {
		r.byID[w.ID] = w
	}
	return r
}

func (r *stubWorkflowRepo) Create(_ context.Context, w *domain.WorkflowInstance) error {
	r.byID[w.ID] = w
	return nil
}

func (r *stubWorkflowRepo) Get(_ context.Context, id string) (*domain.WorkflowInstance, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (r *stubWorkflowRepo) Update(_ context.Context, w *domain.WorkflowInstance) error {
	r.byID[w.ID] = w
	return nil
}

func (r *stubWorkflowRepo) UpdateStatusWithLock(_ context.Context, id string, expected, next domain.FlowStatus) (bool, error) {
	w, ok := r.byID[id]
	if !ok || w.Status != expected {
		return false, nil
	}
	w.Status = next
	return true, nil
}

func (r *stubWorkflowRepo) UpdateSpecWithLock(_ context.Context, id string, expectedLastModified time.Time, spec domain.WorkflowSpec) (bool, error) {
	w, ok := r.byID[id]
	if !ok || !w.LastModified.Equal(expectedLastModified) {
		return false, nil
	}
	w.Spec = spec
	w.LastModified = time.Now()
	return true, nil
}

func (r *stubWorkflowRepo) ListByStatus(_ context.Context, status domain.FlowStatus) ([]*domain.WorkflowInstance, error) {
	var out []*domain.WorkflowInstance
	for _, w := range r.byID {
		if w.Status == status {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *stubWorkflowRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

// stubNodeRepo is an in-memory repository.NodeRepository.
type stubNodeRepo struct {
	byID map[string]*domain.NodeInstance
}

func newStubNodeRepo(nodes ...*domain.NodeInstance) *stubNodeRepo {
	r := &stubNodeRepo{byID: map[string]*domain.NodeInstance{}}
	for _, n := range nodes {
		r.byID[n.ID] = n
	}
	return r
}

func (r *stubNodeRepo) Create(_ context.Context, n *domain.NodeInstance) error {
	r.byID[n.ID] = n
	return nil
}

func (r *stubNodeRepo) CreateBatch(_ context.Context, ns []*domain.NodeInstance) error {
	for _, n := range ns {
		r.byID[n.ID] = n
	}
	return nil
}

func (r *stubNodeRepo) Get(_ context.Context, id string) (*domain.NodeInstance, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return n, nil
}

func (r *stubNodeRepo) Update(_ context.Context, n *domain.NodeInstance) error {
	r.byID[n.ID] = n
	return nil
}

func (r *stubNodeRepo) UpdateStatusWithLock(_ context.Context, id string, expected, next domain.NodeStatus) (bool, error) {
	n, ok := r.byID[id]
	if !ok || n.Status != expected {
		return false, nil
	}
	n.Status = next
	return true, nil
}

func (r *stubNodeRepo) ListByFlow(_ context.Context, flowID string) ([]*domain.NodeInstance, error) {
	var out []*domain.NodeInstance
	for _, n := range r.byID {
		if n.FlowID == flowID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *stubNodeRepo) ListByBatchParent(_ context.Context, parentID string) ([]*domain.NodeInstance, error) {
	var out []*domain.NodeInstance
	for _, n := range r.byID {
		if n.BatchParentID == parentID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *stubNodeRepo) ListByStatus(_ context.Context, status domain.NodeStatus) ([]*domain.NodeInstance, error) {
	var out []*domain.NodeInstance
	for _, n := range r.byID {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out, nil
}

// stubTaskRepo is an in-memory repository.TaskRepository.
type stubTaskRepo struct {
	byID map[string]*domain.Task
}

func newStubTaskRepo(tasks ...*domain.Task) *stubTaskRepo {
	r := &stubTaskRepo{byID: map[string]*domain.Task{}}
	for _, t := range tasks {
		r.byID[t.ID] = t
	}
	return r
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.byID[t.ID] = t
	return nil
}

func (r *stubTaskRepo) CreateBatch(_ context.Context, ts []*domain.Task) error {
	for _, t := range ts {
		r.byID[t.ID] = t
	}
	return nil
}

func (r *stubTaskRepo) Get(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.byID[t.ID] = t
	return nil
}

func (r *stubTaskRepo) UpdateStatusWithLock(_ context.Context, id string, expected, next domain.TaskStatus) (bool, error) {
	t, ok := r.byID[id]
	if !ok || t.Status != expected {
		return false, nil
	}
	t.Status = next
	return true, nil
}

func (r *stubTaskRepo) ListByNode(_ context.Context, nodeID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.byID {
		if t.NodeInstanceID == nodeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) ListByStatus(_ context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.byID {
		if t.Status == status {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
