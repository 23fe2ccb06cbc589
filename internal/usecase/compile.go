// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package usecase

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// SoftwareAvailability answers whether a package's DeploySoftware task
// can be skipped: block-listed packages never deploy, already-installed
// packages on the target queue don't need redeploying.
type SoftwareAvailability interface {
	IsBlocked(ctx context.Context, name, version string) (bool, error)
	IsInstalled(ctx context.Context, queueID, name, version string) (bool, error)
}

// Compiler turns a NodeInstance plus its resolved package descriptor into
// the ordered agent subtask sequence spec.md §4.4 describes.
type Compiler struct {
	packages     PackageFetcher
	availability SoftwareAvailability
}

// NewCompiler builds a Compiler. availability may be nil, in which case
// every compiled node always carries a DeploySoftware task.
func NewCompiler(packages PackageFetcher, availability SoftwareAvailability) *Compiler {
	return &Compiler{packages: packages, availability: availability}
}

// Compile assembles the ordered StartTaskBody sequence for node:
// DeploySoftware (if needed), one DownloadFile per file input or
// download-usage template, a single ExecuteUsecase, one CollectOutput per
// declared collector, and one UploadFile per usecase-output slot the
// collectors didn't already satisfy.
func (c *Compiler) Compile(ctx context.Context, node *domain.NodeInstance) ([]domain.StartTaskBody, error) {
	softwareVersionID, usecaseVersionID := node.SoftwareVersionID, node.UsecaseVersionID
	if softwareVersionID == "" || usecaseVersionID == "" {
		var err error
		softwareVersionID, usecaseVersionID, err = ParseNodeKind(node.Kind)
		if err != nil {
			return nil, err
		}
	}

	pkg, err := c.packages.FetchPackage(ctx, softwareVersionID, usecaseVersionID)
	if err != nil {
		return nil, err
	}

	var bodies []domain.StartTaskBody

	deploy, err := c.deployBody(ctx, node, pkg.SoftwareSpec)
	if err != nil {
		return nil, err
	}
	if deploy != nil {
		bodies = append(bodies, *deploy)
	}

	slotIndex := slotsByDescriptor(node.InputSlots)
	vars := make(map[string]string, len(slotIndex))
	for d, s := range slotIndex {
		vars[d] = textifySlot(s)
	}

	rendered := make(map[string]string, len(pkg.UsecaseSpec.TemplateFiles))
	templatesByName := make(map[string]domain.TemplateFile, len(pkg.UsecaseSpec.TemplateFiles))
	for _, tf := range pkg.UsecaseSpec.TemplateFiles {
		rendered[tf.Name] = renderTemplate(tf.Content, vars)
		templatesByName[tf.Name] = tf
	}

	for _, slot := range node.InputSlots {
		if slot.Kind != "FileIn" {
			continue
		}
		for _, f := range slot.Contents {
			bodies = append(bodies, domain.StartTaskBody{
				Type:         domain.TaskDownloadFile,
				DownloadFile: &domain.DownloadFileBody{Kind: slot.Kind, Path: f.Name},
			})
		}
	}
	for _, tf := range pkg.UsecaseSpec.TemplateFiles {
		if tf.Usage != domain.TemplateUsageDownload {
			continue
		}
		bodies = append(bodies, domain.StartTaskBody{
			Type:         domain.TaskDownloadFile,
			DownloadFile: &domain.DownloadFileBody{Kind: "Template", Path: tf.Name},
		})
	}

	filler := fillerSource{slotsByDescriptor: slotIndex, renderedTemplates: rendered, templatesByName: templatesByName}
	args, err := assembleArguments(pkg.UsecaseSpec.ArgumentMaterials, filler)
	if err != nil {
		return nil, err
	}
	envs, err := assembleEnvironments(pkg.UsecaseSpec.EnvironmentMaterials, filler)
	if err != nil {
		return nil, err
	}
	stdIn := ""
	if pkg.UsecaseSpec.StdInTemplate != "" {
		stdIn = renderTemplate(pkg.UsecaseSpec.StdInTemplate, vars)
	}

	bodies = append(bodies, domain.StartTaskBody{
		Type: domain.TaskExecuteUsecase,
		ExecuteUsecase: &domain.ExecuteUsecaseBody{
			Name:         pkg.UsecaseSpec.Name,
			FacilityKind: pkg.UsecaseSpec.FacilityKind,
			Arguments:    args,
			Environments: envs,
			StdIn:        stdIn,
			Requirements: node.Requirements,
		},
	})

	collected := make(map[string]bool)
	for _, co := range pkg.UsecaseSpec.CollectedOuts {
		bodies = append(bodies, domain.StartTaskBody{
			Type:          domain.TaskCollectOutput,
			CollectOutput: collectOutputBody(co),
		})
		if co.ToKind == domain.CollectToFile {
			collected[co.ToID] = true
		}
	}

	for _, out := range node.OutputSlots {
		if out.Kind != "UsecaseOut" || collected[out.Descriptor] {
			continue
		}
		if len(out.FileIDs) == 0 {
			return nil, fmt.Errorf("usecase: output slot %q has no pre-allocated file id", out.Descriptor)
		}
		path, err := outputPath(pkg.UsecaseSpec, out, slotIndex)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, domain.StartTaskBody{
			Type: domain.TaskUploadFile,
			UploadFile: &domain.UploadFileBody{
				FileID: out.FileIDs[0],
				Path:   path,
			},
		})
	}

	return bodies, nil
}

func (c *Compiler) deployBody(ctx context.Context, node *domain.NodeInstance, spec domain.SoftwareSpec) (*domain.StartTaskBody, error) {
	if c.availability != nil {
		blocked, err := c.availability.IsBlocked(ctx, spec.Name, spec.Version)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, nil
		}
		installed, err := c.availability.IsInstalled(ctx, node.QueueID, spec.Name, spec.Version)
		if err != nil {
			return nil, err
		}
		if installed {
			return nil, nil
		}
	}
	return &domain.StartTaskBody{
		Type:           domain.TaskDeploySoftware,
		DeploySoftware: &domain.DeploySoftwareBody{FacilityKind: string(spec.Kind)},
	}, nil
}

// collectOutputBody flattens a declared CollectedOut into the wire-level
// CollectOutputBody: From carries the source path for FileOut, or the
// bare stream name for Stdout/Stderr; Rule carries the regex or an
// "n lines" encoding; To carries the destination path when declared, or
// the destination id otherwise.
func collectOutputBody(co domain.CollectedOut) *domain.CollectOutputBody {
	from := string(co.FromKind)
	if co.FromKind == domain.CollectFromFileOut {
		from = co.FromPath
	}

	rule := string(co.RuleKind)
	switch co.RuleKind {
	case domain.CollectRuleRegex:
		rule = co.RuleRegex
	case domain.CollectRuleTopLines, domain.CollectRuleBottomLines:
		rule = fmt.Sprintf("%s:%d", co.RuleKind, co.RuleLines)
	}

	to := co.ToID
	if co.ToPath != "" {
		to = co.ToPath
	}

	return &domain.CollectOutputBody{From: from, Rule: rule, To: to}
}

// outputPath resolves the agent-local path an UploadFile task reads from
// for a usecase-output slot: the usecase's own declared path, unless the
// slot is overridden by a bound text input slot (AppointedBy::InputSlot).
func outputPath(spec domain.UsecaseSpec, out domain.OutputSlot, slotIndex map[string]domain.InputSlot) (string, error) {
	if out.PathOverrideSlot != "" {
		slot, ok := slotIndex[out.PathOverrideSlot]
		if !ok || len(slot.TextContents) == 0 {
			return "", fmt.Errorf("usecase: output slot %q path override slot %q has no text content", out.Descriptor, out.PathOverrideSlot)
		}
		return slot.TextContents[0], nil
	}
	for _, decl := range spec.OutputSlots {
		if decl.Descriptor == out.Descriptor {
			return decl.Path, nil
		}
	}
	return "", fmt.Errorf("usecase: no declared path for output slot %q", out.Descriptor)
}
