// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package scheduler implements the three-level scheduler (C6): the
// Flow/Node/Task `change`/`handle_changed` handlers the Status Bus
// dispatches to, each serialised per aggregate id by the bus's sharding
// and coordinating only through repositories and further bus messages.
package scheduler

import (
	"sort"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// entryNodeIDs returns every node in spec whose in-degree is 0 once edges
// touching exclude are ignored, in deterministic (id-sorted) order.
// exclude itself is never returned. Used both for a flow's initial entry
// set (exclude="") and for recomputing remaining entries after a node
// completes (exclude=that node's id).
func entryNodeIDs(spec domain.WorkflowSpec, exclude string) []string {
	indegree := make(map[string]int, len(spec.Nodes))
	for _, n := range spec.Nodes {
		indegree[n.ID] = 0
	}
	for _, rel := range spec.Relations {
		if rel.FromID == exclude || rel.ToID == exclude {
			continue
		}
		indegree[rel.ToID]++
	}

	entries := make([]string, 0, len(spec.Nodes))
	for _, n := range spec.Nodes {
		if n.ID == exclude {
			continue
		}
		if indegree[n.ID] == 0 {
			entries = append(entries, n.ID)
		}
	}
	sort.Strings(entries)
	return entries
}

// nodeSpecByID indexes a WorkflowSpec's nodes by id for the scheduler's
// per-node lookups (batch strategies, slot declarations).
func nodeSpecByID(spec domain.WorkflowSpec, id string) (domain.NodeSpec, bool) {
	for _, n := range spec.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.NodeSpec{}, false
}

// readyStandbyNodes recomputes, after justCompleted finishes, which
// still-Standby nodes now have every predecessor satisfied (Completed,
// or justCompleted itself). A literal graph in-degree recount would
// double-count predecessors that completed in an earlier call; tracking
// completion per predecessor directly handles nodes with more than one
// incoming edge correctly regardless of the order their predecessors
// finish in.
func readyStandbyNodes(spec domain.WorkflowSpec, statuses map[string]domain.NodeStatus, justCompleted string) []string {
	predecessors := make(map[string][]string, len(spec.Nodes))
	for _, rel := range spec.Relations {
		predecessors[rel.ToID] = append(predecessors[rel.ToID], rel.FromID)
	}

	var ready []string
	for id, status := range statuses {
		if status != domain.NodeStandby {
			continue
		}
		allDone := true
		for _, p := range predecessors[id] {
			if p == justCompleted {
				continue
			}
			if statuses[p] != domain.NodeCompleted {
				allDone = false
				break
			}
		}
		if allDone {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}
