// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

func TestExpand_SingleSlot_OneBindingPerInput(t *testing.T) {
	node := &domain.NodeInstance{
		ID: "parent",
		InputSlots: []domain.InputSlot{
			{Descriptor: "samples", Contents: []domain.FileInput{{Name: "a"}, {Name: "b"}, {Name: "c"}}},
		},
	}
	strategies := map[string]domain.BatchStrategy{
		"samples": {Kind: domain.BatchOriginal},
	}
	subNodeIDs := []string{SubNodeName("parent", 0), SubNodeName("parent", 1), SubNodeName("parent", 2)}

	e := NewExpander(Sources{})
	bindings, err := e.Expand(context.Background(), node, strategies, subNodeIDs)
	require.NoError(t, err)
	require.Len(t, bindings, 3)

	names := map[string]bool{}
	for _, id := range subNodeIDs {
		b, ok := bindings[id]
		require.True(t, ok)
		names[b["samples"].File.Name] = true
	}
	assert.True(t, names["a"] && names["b"] && names["c"])
}

func TestExpand_TwoSlots_CartesianProduct(t *testing.T) {
	node := &domain.NodeInstance{
		ID: "parent",
		InputSlots: []domain.InputSlot{
			{Descriptor: "a", Contents: []domain.FileInput{{Name: "a1"}, {Name: "a2"}}},
			{Descriptor: "b", TextContents: []string{"x", "y", "z"}},
		},
	}
	strategies := map[string]domain.BatchStrategy{
		"a": {Kind: domain.BatchOriginal},
		"b": {Kind: domain.BatchOriginal},
	}
	total := 6
	subNodeIDs := make([]string, total)
	for i := range subNodeIDs {
		subNodeIDs[i] = SubNodeName("parent", i)
	}

	e := NewExpander(Sources{})
	bindings, err := e.Expand(context.Background(), node, strategies, subNodeIDs)
	require.NoError(t, err)
	assert.Len(t, bindings, total)

	seen := map[string]bool{}
	for _, id := range subNodeIDs {
		b := bindings[id]
		key := b["a"].File.Name + "/" + b["b"].Text
		seen[key] = true
	}
	assert.Len(t, seen, total, "every (a,b) combination must be distinct across sub-nodes")
}

func TestExpand_CountMismatch_Errors(t *testing.T) {
	node := &domain.NodeInstance{
		InputSlots: []domain.InputSlot{
			{Descriptor: "a", Contents: []domain.FileInput{{Name: "a1"}, {Name: "a2"}}},
		},
	}
	strategies := map[string]domain.BatchStrategy{"a": {Kind: domain.BatchOriginal}}

	e := NewExpander(Sources{})
	_, err := e.Expand(context.Background(), node, strategies, []string{"only-one"})
	assert.Error(t, err)
}

func TestExpand_NoStrategies_Errors(t *testing.T) {
	e := NewExpander(Sources{})
	_, err := e.Expand(context.Background(), &domain.NodeInstance{}, nil, nil)
	assert.Error(t, err)
}

func TestExpand_FromBatchOutputs_UsesSiblingOutputs(t *testing.T) {
	node := &domain.NodeInstance{
		InputSlots: []domain.InputSlot{{Descriptor: "from_parent"}},
	}
	strategies := map[string]domain.BatchStrategy{
		"from_parent": {Kind: domain.BatchFromOutputs, FromSlot: "upstream-parent"},
	}
	outputs := &stubSiblingOutputs{result: []Input{
		{Kind: InputFile, File: domain.FileInput{Name: "o0"}},
		{Kind: InputFile, File: domain.FileInput{Name: "o1"}},
	}}
	subNodeIDs := []string{"n_sub_task_0", "n_sub_task_1"}

	e := NewExpander(Sources{Outputs: outputs})
	bindings, err := e.Expand(context.Background(), node, strategies, subNodeIDs)
	require.NoError(t, err)
	assert.Len(t, bindings, 2)
	assert.Equal(t, "upstream-parent", outputs.gotBatchParentID)
}
