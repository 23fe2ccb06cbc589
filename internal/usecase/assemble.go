// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// textifySlot joins a bound InputSlot's contents the way the compiler's
// argument/environment filler logic expects: a file-backed slot joins its
// file names, a text-backed slot joins its text values, both space
// separated.
func textifySlot(slot domain.InputSlot) string {
	if len(slot.TextContents) > 0 {
		return strings.Join(slot.TextContents, " ")
	}
	names := make([]string, len(slot.Contents))
	for i, f := range slot.Contents {
		names[i] = f.Name
	}
	return strings.Join(names, " ")
}

func slotsByDescriptor(slots []domain.InputSlot) map[string]domain.InputSlot {
	out := make(map[string]domain.InputSlot, len(slots))
	for _, s := range slots {
		out[s.Descriptor] = s
	}
	return out
}

// fillerSource resolves one placeholder reference to its filler text,
// consulting either a rendered template's output (or its chosen file
// name, for references that name the template as a download/file
// reference rather than its content) or a bound input slot's textified
// contents.
type fillerSource struct {
	slotsByDescriptor map[string]domain.InputSlot
	renderedTemplates map[string]string
	templatesByName   map[string]domain.TemplateFile
}

func (f fillerSource) resolve(ref domain.SlotPlaceholderRef) (string, error) {
	if ref.TemplateFile != "" {
		tf, ok := f.templatesByName[ref.TemplateFile]
		if !ok {
			return "", fmt.Errorf("usecase: placeholder references unknown template file %q", ref.TemplateFile)
		}
		switch tf.Usage {
		case domain.TemplateUsageDownload, domain.TemplateUsageFileInputRef:
			return tf.Name, nil
		default:
			return f.renderedTemplates[tf.Name], nil
		}
	}
	slot, ok := f.slotsByDescriptor[ref.SlotDescriptor]
	if !ok {
		return "", nil
	}
	return textifySlot(slot), nil
}

// fill substitutes every bare {{}} placeholder in a material's ValueFormat
// with its resolved filler, one occurrence per ref in ascending
// PlaceholderNth order: the nth ref fills the nth {{}} left to right.
func (f fillerSource) fill(material domain.ValueMaterial) (string, error) {
	out := material.ValueFormat
	refs := append([]domain.SlotPlaceholderRef(nil), material.Refs...)
	sort.Slice(refs, func(i, j int) bool { return refs[i].PlaceholderNth < refs[j].PlaceholderNth })
	for _, ref := range refs {
		filler, err := f.resolve(ref)
		if err != nil {
			return "", err
		}
		out = strings.Replace(out, "{{}}", filler, 1)
	}
	return out, nil
}

// assembleArguments orders argument materials by their declared Sort,
// requiring a dense 0..n-1 range, and fills each one's placeholders.
func assembleArguments(materials []domain.ValueMaterial, f fillerSource) ([]string, error) {
	bySort := make(map[int]domain.ValueMaterial, len(materials))
	for _, m := range materials {
		if _, dup := bySort[m.Sort]; dup {
			return nil, fmt.Errorf("usecase: duplicate argument sort %d", m.Sort)
		}
		bySort[m.Sort] = m
	}

	n := len(materials)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		m, ok := bySort[i]
		if !ok {
			return nil, fmt.Errorf("usecase: argument sorts must form a dense range 0..%d, missing %d", n-1, i)
		}
		filled, err := f.fill(m)
		if err != nil {
			return nil, err
		}
		out[i] = filled
	}
	return out, nil
}

// assembleEnvironments fills every environment material keyed by its
// declared Key; order carries no meaning for environment variables.
func assembleEnvironments(materials []domain.ValueMaterial, f fillerSource) (map[string]string, error) {
	if len(materials) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(materials))
	for _, m := range materials {
		filled, err := f.fill(m)
		if err != nil {
			return nil, err
		}
		out[m.Key] = filled
	}
	return out, nil
}
