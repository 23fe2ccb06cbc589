// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package batch implements the sub-node expansion algorithm for
// batch-parent nodes: computing how many sub-nodes a batch strategy
// produces, generating the per-strategy input list, and pairing the
// Cartesian product of those lists across slots with pre-allocated
// sub-node ids.
package batch

import "github.com/amd-aig/workflow-engine/internal/domain"

// InputKind discriminates whether a generated batch Input is file- or
// text-backed.
type InputKind string

const (
	InputFile InputKind = "File"
	InputText InputKind = "Text"
)

// Input is one value a batch strategy contributes to a single slot on a
// single expanded sub-node.
type Input struct {
	Kind InputKind
	File domain.FileInput
	Text string
}

// Binding is one sub-node's worth of slot contents: one Input per
// batch-strategy-bearing slot descriptor, taken from that slot's
// position in the Cartesian product.
type Binding map[string]Input
