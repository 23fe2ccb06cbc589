// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
	"github.com/amd-aig/workflow-engine/pkg/logger"
	"github.com/amd-aig/workflow-engine/pkg/logger/conf"
)

var (
	nodeResourceCPU = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workflow_node_resource_cpu",
			Help: "Most recently reported CPU utilization of a running node.",
		},
		[]string{"node_id", "flow_id"},
	)
	nodeResourceMemoryRSS = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workflow_node_resource_memory_rss_bytes",
			Help: "Most recently reported resident memory of a running node.",
		},
		[]string{"node_id", "flow_id"},
	)
	nodeResourceStorage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workflow_node_resource_storage_bytes",
			Help: "Most recently reported storage usage of a running node.",
		},
		[]string{"node_id", "flow_id"},
	)
)

// ResourceSweeper periodically exports every Running node's resource_meter
// sample to the metrics backend (spec.md's concurrency model names a
// periodic sweep alongside the bus-driven handlers for exactly this kind
// of out-of-band bookkeeping). It does not mutate node state; the bus
// handlers remain the sole writer of status.
type ResourceSweeper struct {
	nodes repository.NodeRepository
	log   logger.Logger
	cron  *cron.Cron
}

// NewResourceSweeper builds a ResourceSweeper over nodes, logging with log.
func NewResourceSweeper(nodes repository.NodeRepository, log logger.Logger) *ResourceSweeper {
	return &ResourceSweeper{nodes: nodes, log: log, cron: cron.New(cron.WithSeconds())}
}

// Start schedules the export job at spec (6-field cron syntax with a
// leading seconds field, e.g. "*/30 * * * * *")
// and begins running it in the background. Call Stop to halt it.
func (s *ResourceSweeper) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() { s.sweepOnce(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the background cron scheduler, waiting for any in-flight run
// to finish.
func (s *ResourceSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ResourceSweeper) sweepOnce(ctx context.Context) {
	running, err := s.nodes.ListByStatus(ctx, domain.NodeRunning)
	if err != nil {
		s.log.Logf(conf.ErrorLevel, "resource sweep: listing running nodes: %v", err)
		return
	}
	for _, n := range running {
		if n.ResourceMeter == nil {
			continue
		}
		nodeResourceCPU.WithLabelValues(n.ID, n.FlowID).Set(n.ResourceMeter.CPU)
		nodeResourceMemoryRSS.WithLabelValues(n.ID, n.FlowID).Set(float64(n.ResourceMeter.MemoryRSS))
		nodeResourceStorage.WithLabelValues(n.ID, n.FlowID).Set(float64(n.ResourceMeter.Storage))
	}
}
