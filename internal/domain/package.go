// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import "time"

// SoftwareKind discriminates the closed set of ways a software package can
// be provisioned onto an agent ahead of an ExecuteUsecase task.
type SoftwareKind string

const (
	SoftwareSpack       SoftwareKind = "Spack"
	SoftwareSingularity SoftwareKind = "Singularity"
)

// SoftwareSpec names the facility a DeploySoftware task installs.
type SoftwareSpec struct {
	Kind      SoftwareKind `json:"kind"`
	Name      string       `json:"name,omitempty"`
	Version   string       `json:"version,omitempty"`
	SpackArgs []string     `json:"spack_args,omitempty"`
	Image     string       `json:"image,omitempty"`
	Tag       string       `json:"tag,omitempty"`
}

// UsecaseInputSlot is the declared shape of an input a usecase accepts,
// distinct from InputSlot (the runtime binding a NodeInstance carries).
type UsecaseInputSlot struct {
	Descriptor string `json:"descriptor"`
	Kind       string `json:"kind"` // "FileIn" or "TextIn"
	Optional   bool   `json:"optional"`
}

// UsecaseOutputSlot is the declared shape of a file a usecase produces.
type UsecaseOutputSlot struct {
	Descriptor string `json:"descriptor"`
	Kind       string `json:"kind"` // "UsecaseOut"
	Path       string `json:"path,omitempty"`
}

// SlotPlaceholderRef binds one `{{}}` placeholder in a ValueMaterial's
// ValueFormat to its filler: either an input slot's textified contents or
// a rendered/named template file.
type SlotPlaceholderRef struct {
	PlaceholderNth int    `json:"placeholder_nth"`
	SlotDescriptor string `json:"slot_descriptor,omitempty"`
	TemplateFile   string `json:"template_file,omitempty"`
}

// ValueMaterial is one argument or environment entry the usecase declares.
// Sort orders arguments into the compiled command line (dense 0..n-1,
// required); Key names an environment variable. ValueFormat is the
// Handlebars-style template string the compiler fills via Refs.
type ValueMaterial struct {
	Sort        int                  `json:"sort,omitempty"`
	Key         string               `json:"key,omitempty"`
	ValueFormat string               `json:"value_format"`
	Refs        []SlotPlaceholderRef `json:"refs"`
}

// TemplateFileUsage discriminates how a rendered template's content is
// consumed downstream — all cases resolve to ordinary downloads/arguments
// once rendering is done.
type TemplateFileUsage string

const (
	TemplateUsageDownload    TemplateFileUsage = "Download"
	TemplateUsageArgument    TemplateFileUsage = "Argument"
	TemplateUsageEnvironment TemplateFileUsage = "Environment"
	TemplateUsageStdIn       TemplateFileUsage = "StdIn"
	TemplateUsageFileInputRef TemplateFileUsage = "FileInputRef"
)

// TemplateFile is one Handlebars-style template the compiler renders
// against the accumulated slot key→value map before assembling the task
// sequence.
type TemplateFile struct {
	Name    string            `json:"name"`
	Content string            `json:"content"`
	Usage   TemplateFileUsage `json:"usage"`
}

// CollectedOutFromKind discriminates where a CollectOutput task reads from.
type CollectedOutFromKind string

const (
	CollectFromFileOut CollectedOutFromKind = "FileOut"
	CollectFromStdout  CollectedOutFromKind = "Stdout"
	CollectFromStderr  CollectedOutFromKind = "Stderr"
)

// CollectedOutRuleKind discriminates how a CollectOutput task filters what
// it reads before writing it to its destination.
type CollectedOutRuleKind string

const (
	CollectRuleRegex       CollectedOutRuleKind = "Regex"
	CollectRuleTopLines    CollectedOutRuleKind = "TopLines"
	CollectRuleBottomLines CollectedOutRuleKind = "BottomLines"
)

// CollectedOutToKind discriminates where a CollectOutput task writes.
type CollectedOutToKind string

const (
	CollectToFile CollectedOutToKind = "File"
	CollectToText CollectedOutToKind = "Text"
)

// CollectedOut is one `collected_out` the usecase declares: a rule for
// moving bytes from an execution artifact (a file path, or the process's
// own stdout/stderr) into a named output.
type CollectedOut struct {
	FromKind   CollectedOutFromKind `json:"from_kind"`
	FromPath   string               `json:"from_path,omitempty"`
	RuleKind   CollectedOutRuleKind `json:"rule_kind"`
	RuleRegex  string               `json:"rule_regex,omitempty"`
	RuleLines  int                  `json:"rule_lines,omitempty"`
	ToKind     CollectedOutToKind   `json:"to_kind"`
	ToID       string               `json:"to_id"`
	ToPath     string               `json:"to_path,omitempty"`
}

// UsecaseSpec is the parameterized invocation template a software package
// declares: its command, slot shapes, argument/environment materials,
// template files, and collected outputs.
type UsecaseSpec struct {
	Name                 string              `json:"name"`
	FacilityKind         string              `json:"facility_kind"`
	InputSlots           []UsecaseInputSlot  `json:"input_slots"`
	OutputSlots          []UsecaseOutputSlot `json:"output_slots"`
	ArgumentMaterials    []ValueMaterial     `json:"argument_materials"`
	EnvironmentMaterials []ValueMaterial     `json:"environment_materials"`
	TemplateFiles        []TemplateFile      `json:"template_files"`
	CollectedOuts        []CollectedOut      `json:"collected_outs"`
	StdInTemplate        string              `json:"std_in_template,omitempty"`
}

// PackageDescriptor is a read-through cache entry for one
// (software_version_id, usecase_version_id) pair fetched from the external
// software-package registry. Specs are immutable once published, so a
// descriptor never needs invalidating once fetched.
type PackageDescriptor struct {
	SoftwareVersionID string       `json:"software_version_id"`
	UsecaseVersionID  string       `json:"usecase_version_id"`
	UsecaseSpec       UsecaseSpec  `json:"usecase_spec"`
	SoftwareSpec      SoftwareSpec `json:"software_spec"`
	FetchedAt         time.Time    `json:"fetched_at"`
}
