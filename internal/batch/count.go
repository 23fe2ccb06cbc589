// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// ParentResolver looks up a batch-parent node by id together with the
// BatchStrategies its originating NodeSpec declared, so FromBatchOutputs
// can recurse into an upstream parent's own sub-node count. Implemented
// by the scheduler (internal/scheduler), which holds the WorkflowSpec a
// NodeInstance was expanded from.
type ParentResolver interface {
	Get(ctx context.Context, nodeID string) (*domain.NodeInstance, map[string]domain.BatchStrategy, error)
}

// SubNodeCount computes the number of sub-nodes a batch-parent node
// produces: the product, across every slot carrying a BatchStrategy, of
// that strategy's own count. A node with no batch strategies is scalar
// and never reaches this function from the expander.
func SubNodeCount(ctx context.Context, node *domain.NodeInstance, strategies map[string]domain.BatchStrategy, parents ParentResolver) (int, error) {
	if len(strategies) == 0 {
		return 1, nil
	}

	slotIndex := make(map[string]domain.InputSlot, len(node.InputSlots))
	for _, s := range node.InputSlots {
		slotIndex[s.Descriptor] = s
	}

	count := 1
	for descriptor, strat := range strategies {
		n, err := slotCount(ctx, strat, slotIndex[descriptor], parents)
		if err != nil {
			return 0, fmt.Errorf("batch: sub-node count for slot %q: %w", descriptor, err)
		}
		count *= n
	}
	return count, nil
}

func slotCount(ctx context.Context, strat domain.BatchStrategy, slot domain.InputSlot, parents ParentResolver) (int, error) {
	switch strat.Kind {
	case domain.BatchOriginal:
		n := len(slot.Contents)
		if n == 0 {
			n = len(slot.TextContents)
		}
		return n, nil
	case domain.BatchMatchRegex:
		return strat.FillCount, nil
	case domain.BatchFromOutputs:
		if parents == nil {
			return 0, fmt.Errorf("no parent resolver configured for FromBatchOutputs strategy")
		}
		parent, upstreamStrategies, err := parents.Get(ctx, strat.FromSlot)
		if err != nil {
			return 0, err
		}
		return SubNodeCount(ctx, parent, upstreamStrategies, parents)
	default:
		return 0, fmt.Errorf("unknown batch strategy kind %q", strat.Kind)
	}
}

// SubNodeName is the deterministic name a sub-node is created under at
// workflow-instantiation time.
func SubNodeName(parentID string, i int) string {
	return fmt.Sprintf("%s_sub_task_%d", parentID, i)
}
