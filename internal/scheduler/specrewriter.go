// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// FlowSpecRewriter is the default filemove.SpecRewriter: it repoints a
// flash-uploaded placeholder meta id to its canonical equivalent
// wherever it appears in a flow's persisted spec, under the same
// optimistic-lock-and-retry discipline UpdateStatusWithLock uses for
// status transitions (here keyed on LastModified instead of Status,
// since a spec rewrite isn't itself a status change).
type FlowSpecRewriter struct {
	workflows repository.WorkflowRepository
}

// NewFlowSpecRewriter builds a FlowSpecRewriter over workflows.
func NewFlowSpecRewriter(workflows repository.WorkflowRepository) *FlowSpecRewriter {
	return &FlowSpecRewriter{workflows: workflows}
}

// ReplaceMetaID implements filemove.SpecRewriter. It round-trips the
// spec through its own JSON encoding and does a literal substring
// replace of placeholderMetaID: meta ids are opaque UUID-shaped tokens,
// so a textual replace finds every occurrence regardless of which
// nested slot-binding field a caller embedded the placeholder in,
// without this package needing to understand every spec shape that
// might carry one. A no-op replace (placeholder absent) still reports
// success, since another retry attempt may have already won.
func (r *FlowSpecRewriter) ReplaceMetaID(ctx context.Context, flowID, placeholderMetaID, canonicalMetaID string) error {
	wf, err := r.workflows.Get(ctx, flowID)
	if err != nil {
		return fmt.Errorf("scheduler: loading flow %q for spec rewrite: %w", flowID, err)
	}

	raw, err := marshalSpec(wf.Spec)
	if err != nil {
		return err
	}
	if !strings.Contains(raw, placeholderMetaID) {
		return nil
	}
	rewritten := strings.ReplaceAll(raw, placeholderMetaID, canonicalMetaID)

	spec, err := unmarshalSpec(rewritten)
	if err != nil {
		return err
	}

	ok, err := r.workflows.UpdateSpecWithLock(ctx, flowID, wf.LastModified, spec)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("scheduler: flow %q spec changed concurrently, retry", flowID)
	}
	return nil
}

func marshalSpec(spec domain.WorkflowSpec) (string, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("scheduler: marshaling spec: %w", err)
	}
	return string(b), nil
}

func unmarshalSpec(raw string) (domain.WorkflowSpec, error) {
	var spec domain.WorkflowSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return domain.WorkflowSpec{}, fmt.Errorf("scheduler: unmarshaling rewritten spec: %w", err)
	}
	return spec, nil
}
