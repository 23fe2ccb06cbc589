// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package aitopics

// Topic constants for the Status Bus (C1).
// Format: {scope}.status-changed

const (
	TopicFlowStatusChanged = "flow.status-changed"
	TopicNodeStatusChanged = "node.status-changed"
	TopicTaskStatusChanged = "task.status-changed"
)

// API Version
const CurrentVersion = "v1"

// TopicDomains defines the valid topic scopes.
var TopicDomains = []string{
	"flow",
	"node",
	"task",
}

// IsValidTopic checks if a topic string is a known topic.
func IsValidTopic(topic string) bool {
	switch topic {
	case TopicFlowStatusChanged,
		TopicNodeStatusChanged,
		TopicTaskStatusChanged:
		return true
	default:
		return false
	}
}
