// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"fmt"
	"sort"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// Expander materialises a batch-parent node's sub-node bindings: one
// Binding per pre-allocated sub-node id, drawn from the Cartesian product
// of each strategy-bearing slot's generated input list.
type Expander struct {
	Sources Sources
}

// NewExpander builds an Expander backed by sources.
func NewExpander(sources Sources) *Expander {
	return &Expander{Sources: sources}
}

// Expand computes each strategy-bearing slot's input list and pairs every
// combination across slots with one of subNodeIDs, in the deterministic
// order produced by iterating slots sorted by descriptor, innermost slot
// fastest. len(subNodeIDs) must equal the product of each slot's input
// count (i.e. SubNodeCount's result for the same strategies); otherwise
// Expand returns an error rather than silently truncating or padding.
func (e *Expander) Expand(ctx context.Context, node *domain.NodeInstance, strategies map[string]domain.BatchStrategy, subNodeIDs []string) (map[string]Binding, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("batch: node %q has no batch strategies to expand", node.ID)
	}

	slotIndex := make(map[string]domain.InputSlot, len(node.InputSlots))
	for _, s := range node.InputSlots {
		slotIndex[s.Descriptor] = s
	}

	descriptors := make([]string, 0, len(strategies))
	for d := range strategies {
		descriptors = append(descriptors, d)
	}
	sort.Strings(descriptors)

	perSlotInputs := make(map[string][]Input, len(descriptors))
	total := 1
	for _, d := range descriptors {
		inputs, err := GenerateInputs(ctx, strategies[d], slotIndex[d], e.Sources)
		if err != nil {
			return nil, fmt.Errorf("batch: generating inputs for slot %q: %w", d, err)
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("batch: slot %q produced no inputs", d)
		}
		perSlotInputs[d] = inputs
		total *= len(inputs)
	}

	if total != len(subNodeIDs) {
		return nil, fmt.Errorf("batch: expanded combination count %d does not match pre-allocated sub-node count %d", total, len(subNodeIDs))
	}

	bindings := make(map[string]Binding, total)
	indices := make([]int, len(descriptors))
	for i := 0; i < total; i++ {
		b := make(Binding, len(descriptors))
		for di, d := range descriptors {
			b[d] = perSlotInputs[d][indices[di]]
		}
		bindings[subNodeIDs[i]] = b

		for di := len(descriptors) - 1; di >= 0; di-- {
			indices[di]++
			if indices[di] < len(perSlotInputs[descriptors[di]]) {
				break
			}
			indices[di] = 0
		}
	}

	return bindings, nil
}
