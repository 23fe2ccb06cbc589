// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// FileContentReader fetches the bytes of a previously-uploaded file by meta
// id, used by MatchRegex to read the single source a batch-parent's
// file-backed slot names.
type FileContentReader interface {
	ReadFile(ctx context.Context, metaID string) ([]byte, error)
}

// TextStore persists a freshly-generated text value under a new key, per
// MatchRegex's "new text entries inserted into text storage with
// freshly-generated keys" rule. The returned key is bookkeeping only: the
// generated Input carries the text value itself, not the key.
type TextStore interface {
	Put(ctx context.Context, text string) (key string, err error)
}

// FileStore uploads freshly-generated file content, producing a
// content-hashed FileInput, per MatchRegex's "new files uploaded via the
// move pipeline with content-hashed meta-ids" rule.
type FileStore interface {
	PutFile(ctx context.Context, name string, content []byte) (domain.FileInput, error)
}

// SiblingOutputs resolves a FromBatchOutputs strategy's source: the
// upstream batch parent's already-expanded sub-nodes' designated outputs,
// one Input per sub-node in sub-node index order. Implemented by the
// scheduler, which holds the NodeRepository needed to list a batch
// parent's children and read their OutputSlots.
type SiblingOutputs interface {
	ListOutputs(ctx context.Context, batchParentID string) ([]Input, error)
}

// Sources bundles the backing stores GenerateInputs and Expand need; a nil
// field is only safe when no strategy in use requires it.
type Sources struct {
	Files   FileContentReader
	Texts   TextStore
	Uploads FileStore
	Outputs SiblingOutputs
}

// GenerateInputs produces the ordered list of Input values a single slot's
// BatchStrategy contributes — one Input per sub-node, in sub-node index
// order — from which Expand draws the Cartesian product.
func GenerateInputs(ctx context.Context, strat domain.BatchStrategy, slot domain.InputSlot, sources Sources) ([]Input, error) {
	switch strat.Kind {
	case domain.BatchOriginal:
		return generateOriginalBatch(slot, strat)
	case domain.BatchMatchRegex:
		return generateMatchRegex(ctx, strat, slot, sources)
	case domain.BatchFromOutputs:
		if sources.Outputs == nil {
			return nil, fmt.Errorf("batch: FromBatchOutputs requires a SiblingOutputs resolver")
		}
		return sources.Outputs.ListOutputs(ctx, strat.FromSlot)
	default:
		return nil, fmt.Errorf("unknown batch strategy kind %q", strat.Kind)
	}
}

// generateOriginalBatch rewrites each existing file input's name to avoid
// collisions across sub-nodes; text inputs carry no name and pass through
// unchanged, one per sub-node.
func generateOriginalBatch(slot domain.InputSlot, strat domain.BatchStrategy) ([]Input, error) {
	if len(slot.Contents) > 0 {
		inputs := make([]Input, len(slot.Contents))
		for i, f := range slot.Contents {
			name := f.Name
			if strat.RenamingPattern != "" {
				name = strings.ReplaceAll(strat.RenamingPattern, "{}", uuid.New().String())
			}
			inputs[i] = Input{Kind: InputFile, File: domain.FileInput{
				MetaID: f.MetaID,
				Name:   name,
				Hash:   f.Hash,
				Size:   f.Size,
			}}
		}
		return inputs, nil
	}
	inputs := make([]Input, len(slot.TextContents))
	for i, t := range slot.TextContents {
		inputs[i] = Input{Kind: InputText, Text: t}
	}
	return inputs, nil
}

// generateMatchRegex fetches the slot's single source — its one text value,
// or the content of its one file — and for each of fill_count fills applies
// filler to produce a value substituted into every match of regex,
// producing one new text or file Input per fill.
func generateMatchRegex(ctx context.Context, strat domain.BatchStrategy, slot domain.InputSlot, sources Sources) ([]Input, error) {
	re, err := regexp.Compile(strat.Regex)
	if err != nil {
		return nil, fmt.Errorf("batch: invalid MatchRegex pattern %q: %w", strat.Regex, err)
	}

	fills, err := fillValues(strat.Filler, strat.FillCount)
	if err != nil {
		return nil, err
	}

	switch {
	case len(slot.TextContents) > 0:
		source := slot.TextContents[0]
		inputs := make([]Input, len(fills))
		for i, v := range fills {
			text := re.ReplaceAllString(source, v)
			if sources.Texts != nil {
				if _, err := sources.Texts.Put(ctx, text); err != nil {
					return nil, fmt.Errorf("batch: storing generated text: %w", err)
				}
			}
			inputs[i] = Input{Kind: InputText, Text: text}
		}
		return inputs, nil

	case len(slot.Contents) > 0:
		if sources.Files == nil || sources.Uploads == nil {
			return nil, fmt.Errorf("batch: MatchRegex over a file slot requires a FileContentReader and FileStore")
		}
		src := slot.Contents[0]
		content, err := sources.Files.ReadFile(ctx, src.MetaID)
		if err != nil {
			return nil, fmt.Errorf("batch: reading source file %q: %w", src.MetaID, err)
		}
		inputs := make([]Input, len(fills))
		for i, v := range fills {
			generated := re.ReplaceAll(content, []byte(v))
			fi, err := sources.Uploads.PutFile(ctx, src.Name, generated)
			if err != nil {
				return nil, fmt.Errorf("batch: uploading generated file: %w", err)
			}
			inputs[i] = Input{Kind: InputFile, File: fi}
		}
		return inputs, nil

	default:
		return nil, fmt.Errorf("batch: MatchRegex slot %q has no source content", slot.Descriptor)
	}
}

// fillValues produces n values per filler: AutoNumber counts start,
// start+step, ...; Enumeration cycles through items, wrapping if n exceeds
// len(items).
func fillValues(filler domain.Filler, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("batch: fill_count must be positive, got %d", n)
	}
	switch filler.Kind {
	case domain.FillerAutoNumber:
		values := make([]string, n)
		for i := 0; i < n; i++ {
			values[i] = strconv.Itoa(filler.Start + i*filler.Step)
		}
		return values, nil
	case domain.FillerEnumeration:
		if len(filler.Items) == 0 {
			return nil, fmt.Errorf("batch: Enumeration filler has no items")
		}
		values := make([]string, n)
		for i := 0; i < n; i++ {
			values[i] = filler.Items[i%len(filler.Items)]
		}
		return values, nil
	default:
		return nil, fmt.Errorf("unknown filler kind %q", filler.Kind)
	}
}
