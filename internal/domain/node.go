// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import (
	"encoding/json"
	"time"
)

// FileInput is a single file reference held by an InputSlot, pointing at a
// FileMeta row by content hash rather than by path.
type FileInput struct {
	MetaID string `json:"meta_id"`
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Size   int64  `json:"size"`
}

// InputSlot is the runtime instance of an InputSlotSpec, holding the files
// actually wired into it once upstream producers complete. A slot is
// either file-backed (Contents) or text-backed (TextContents), matching
// the usecase compiler's "textified contents" rule: a file list joins as
// space-separated paths, a text list joins as space-separated values.
type InputSlot struct {
	Descriptor   string      `json:"descriptor"`
	Kind         string      `json:"kind"`
	Optional     bool        `json:"optional"`
	Rule         string      `json:"rule,omitempty"`
	Contents     []FileInput `json:"contents,omitempty"`
	TextContents []string    `json:"text_contents,omitempty"`
}

// Satisfied reports whether this slot has enough content to let its owning
// node proceed: optional slots are always satisfied, required slots need
// at least one file or text value.
func (s InputSlot) Satisfied() bool {
	return s.Optional || len(s.Contents) > 0 || len(s.TextContents) > 0
}

// OutputSlot is the runtime instance of an OutputSlotSpec. FileIDs is
// pre-allocated at node creation time so downstream consumers can be wired
// before the producing task has actually run. PathOverrideSlot, when set,
// names the InputSlot descriptor supplying this slot's out-path instead of
// the usecase's own declared path (AppointedBy::InputSlot in spec terms).
type OutputSlot struct {
	Descriptor       string   `json:"descriptor"`
	Kind             string   `json:"kind"`
	FileIDs          []string `json:"file_ids"`
	PathOverrideSlot string   `json:"path_override_slot,omitempty"`
}

// ResourceUsageSample is a point-in-time resource reading attached to a
// running node, exported to the metrics backend by the scheduler's
// periodic sweep.
type ResourceUsageSample struct {
	CPU       float64   `json:"cpu"`
	MemoryRSS uint64    `json:"memory_rss"`
	Storage   uint64    `json:"storage"`
	SampledAt time.Time `json:"sampled_at"`
}

// NodeInstance is one expanded unit of work within a WorkflowInstance. A
// batching NodeSpec produces many NodeInstance rows sharing BatchParentID.
// SoftwareVersionID/UsecaseVersionID are the package identifiers the
// NodeSpec's Kind carries; the usecase compiler (internal/usecase) resolves
// them against the package registry to assemble this node's task sequence.
type NodeInstance struct {
	ID                string       `gorm:"primaryKey;size:64" json:"id"`
	FlowID            string       `gorm:"size:64;index" json:"flow_id"`
	Kind              string       `gorm:"size:128" json:"kind"`
	SoftwareVersionID string       `gorm:"size:64" json:"software_version_id,omitempty"`
	UsecaseVersionID  string       `gorm:"size:64" json:"usecase_version_id,omitempty"`
	Name              string       `gorm:"size:256" json:"name"`
	Status            NodeStatus   `gorm:"size:32;index" json:"status"`
	IsParent          bool         `json:"is_parent"`
	BatchParentID     string       `gorm:"size:64;index" json:"batch_parent_id,omitempty"`
	QueueID           string       `gorm:"size:64" json:"queue_id,omitempty"`
	InputSlotsJSON    string       `gorm:"type:jsonb;column:input_slots" json:"-"`
	InputSlots        []InputSlot  `gorm:"-" json:"input_slots"`
	OutputSlotsJSON   string       `gorm:"type:jsonb;column:output_slots" json:"-"`
	OutputSlots       []OutputSlot `gorm:"-" json:"output_slots"`
	RequirementsJSON  string            `gorm:"type:jsonb;column:requirements" json:"-"`
	Requirements      map[string]string `gorm:"-" json:"requirements,omitempty"`
	AdditionalDataJSON string           `gorm:"type:jsonb;column:additional_data" json:"-"`
	AdditionalData    map[string]string `gorm:"-" json:"additional_data,omitempty"`
	ResourceMeter     *ResourceUsageSample `gorm:"-" json:"resource_meter,omitempty"`
	Log               string       `json:"log,omitempty"`
	LastModified      time.Time    `json:"last_modified"`
	CreatedAt         time.Time    `json:"created_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (NodeInstance) TableName() string {
	return "node_instances"
}

// BeforeSave serializes the slot slices into their jsonb-backed columns.
func (n *NodeInstance) BeforeSave() error {
	in, err := json.Marshal(n.InputSlots)
	if err != nil {
		return err
	}
	n.InputSlotsJSON = string(in)
	out, err := json.Marshal(n.OutputSlots)
	if err != nil {
		return err
	}
	n.OutputSlotsJSON = string(out)
	if n.Requirements != nil {
		r, err := json.Marshal(n.Requirements)
		if err != nil {
			return err
		}
		n.RequirementsJSON = string(r)
	}
	if n.AdditionalData != nil {
		a, err := json.Marshal(n.AdditionalData)
		if err != nil {
			return err
		}
		n.AdditionalDataJSON = string(a)
	}
	return nil
}

// AfterFind deserializes the jsonb-backed slot columns back into slices.
func (n *NodeInstance) AfterFind() error {
	if n.InputSlotsJSON != "" {
		if err := json.Unmarshal([]byte(n.InputSlotsJSON), &n.InputSlots); err != nil {
			return err
		}
	}
	if n.OutputSlotsJSON != "" {
		if err := json.Unmarshal([]byte(n.OutputSlotsJSON), &n.OutputSlots); err != nil {
			return err
		}
	}
	if n.RequirementsJSON != "" {
		if err := json.Unmarshal([]byte(n.RequirementsJSON), &n.Requirements); err != nil {
			return err
		}
	}
	if n.AdditionalDataJSON != "" {
		if err := json.Unmarshal([]byte(n.AdditionalDataJSON), &n.AdditionalData); err != nil {
			return err
		}
	}
	return nil
}

// AllInputsSatisfied reports whether every input slot has enough content
// for the node to transition out of Standby.
func (n *NodeInstance) AllInputsSatisfied() bool {
	for _, s := range n.InputSlots {
		if !s.Satisfied() {
			return false
		}
	}
	return true
}
