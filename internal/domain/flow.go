// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import (
	"encoding/json"
	"time"
)

// SchedulingKind discriminates the closed set of scheduling strategies a
// flow or node spec may request.
type SchedulingKind string

const (
	SchedulingManual  SchedulingKind = "Manual"
	SchedulingPrefer  SchedulingKind = "Prefer"
	SchedulingAuto    SchedulingKind = "Auto"
)

// SchedulingStrategy is a closed sum type over queue-assignment policy.
// Manual names the fixed, ordered set of queue ids the caller is willing
// to run on; Prefer names a preferred ordered set the scheduler may fall
// back from onto any other alive queue; Auto leaves selection entirely to
// the queue resource service.
type SchedulingStrategy struct {
	Kind     SchedulingKind `json:"kind"`
	QueueIDs []string       `json:"queue_ids,omitempty"`
}

// BatchKind discriminates the closed set of batch-expansion strategies an
// input slot may carry.
type BatchKind string

const (
	BatchOriginal         BatchKind = "OriginalBatch"
	BatchMatchRegex       BatchKind = "MatchRegex"
	BatchFromOutputs      BatchKind = "FromBatchOutputs"
)

// FillerKind discriminates the closed set of ways a MatchRegex batch
// strategy generates one filler value per declared fill.
type FillerKind string

const (
	FillerAutoNumber  FillerKind = "AutoNumber"
	FillerEnumeration FillerKind = "Enumeration"
)

// Filler is a closed sum type over MatchRegex's fill-value generator.
// AutoNumber produces Start, Start+Step, Start+2*Step, ...; Enumeration
// cycles through Items in order.
type Filler struct {
	Kind  FillerKind `json:"kind"`
	Start int        `json:"start,omitempty"`
	Step  int        `json:"step,omitempty"`
	Items []string   `json:"items,omitempty"`
}

// BatchStrategy is a closed sum type describing how a slot's contents
// expand into per-sub-node inputs during batch expansion (see
// internal/batch).
type BatchStrategy struct {
	Kind  BatchKind `json:"kind"`
	Regex string    `json:"regex,omitempty"`
	// FromSlot names the upstream batch-parent node id FromBatchOutputs
	// recurses into: this slot's sub-node count equals sub_node_count of
	// that upstream parent, and its inputs are that parent's pre-allocated
	// per-sub-node outputs.
	FromSlot string `json:"from_slot,omitempty"`
	// FillCount and Filler parameterize MatchRegex: fill_count values are
	// generated by Filler and substituted into Regex's matches.
	FillCount int    `json:"fill_count,omitempty"`
	Filler    Filler `json:"filler,omitempty"`
	// RenamingPattern parameterizes OriginalBatch: each existing file
	// input's name is rewritten by replacing "{}" with a fresh uuid, to
	// avoid filename collisions across sub-nodes.
	RenamingPattern string `json:"renaming_pattern,omitempty"`
}

// NodeSpec is the immutable, author-supplied description of a node within
// a WorkflowSpec; it is expanded by the batch expander into one or more
// NodeInstance rows.
type NodeSpec struct {
	ID          string              `json:"id"`
	Kind        string              `json:"kind"`
	Name        string              `json:"name"`
	InputSlots  []InputSlotSpec     `json:"input_slots"`
	OutputSlots []OutputSlotSpec    `json:"output_slots"`
	Scheduling  SchedulingStrategy  `json:"scheduling"`
	// BatchStrategies maps an input slot descriptor to the strategy used to
	// expand it; a NodeSpec with no entries never batches and produces
	// exactly one NodeInstance.
	BatchStrategies map[string]BatchStrategy `json:"batch_strategies,omitempty"`
	Requirements    map[string]string         `json:"requirements,omitempty"`
	AdditionalData  json.RawMessage           `json:"additional_data,omitempty"`
}

// InputSlotSpec is the spec-level declaration of a node's input slot.
type InputSlotSpec struct {
	Descriptor string `json:"descriptor"`
	Kind       string `json:"kind"`
	Optional   bool   `json:"optional"`
	Rule       string `json:"rule,omitempty"`
}

// OutputSlotSpec is the spec-level declaration of a node's output slot.
type OutputSlotSpec struct {
	Descriptor string `json:"descriptor"`
	Kind       string `json:"kind"`
}

// SlotRelation connects an output slot on one node to an input slot on
// another within a NodeRelation.
type SlotRelation struct {
	FromSlot string `json:"from_slot"`
	ToSlot   string `json:"to_slot"`
}

// NodeRelation is a directed edge in the flow's node graph, carrying the
// slot-to-slot wiring that moves produced files between nodes.
type NodeRelation struct {
	FromID        string         `json:"from_id"`
	ToID          string         `json:"to_id"`
	SlotRelations []SlotRelation `json:"slot_relations"`
}

// WorkflowSpec is the immutable, author-supplied blueprint for a
// WorkflowInstance: its node specs, their wiring, and the flow-level
// scheduling default inherited by nodes that don't override it.
type WorkflowSpec struct {
	SchedulingStrategy SchedulingStrategy `json:"scheduling_strategy"`
	Nodes              []NodeSpec         `json:"nodes"`
	Relations          []NodeRelation     `json:"relations"`
}

// WorkflowInstance is the root aggregate of a running (or completed) flow.
type WorkflowInstance struct {
	ID           string     `gorm:"primaryKey;size:64" json:"id"`
	UserID       string     `gorm:"size:64;index" json:"user_id"`
	Status       FlowStatus `gorm:"size:32;index" json:"status"`
	SpecJSON     string     `gorm:"type:jsonb;column:spec" json:"-"`
	Spec         WorkflowSpec `gorm:"-" json:"spec"`
	LastModified time.Time  `json:"last_modified"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (WorkflowInstance) TableName() string {
	return "workflow_instances"
}

// BeforeSave serializes Spec into the jsonb-backed SpecJSON column.
func (w *WorkflowInstance) BeforeSave() error {
	b, err := json.Marshal(w.Spec)
	if err != nil {
		return err
	}
	w.SpecJSON = string(b)
	return nil
}

// AfterFind deserializes SpecJSON back into Spec after a row load.
func (w *WorkflowInstance) AfterFind() error {
	if w.SpecJSON == "" {
		return nil
	}
	return json.Unmarshal([]byte(w.SpecJSON), &w.Spec)
}
