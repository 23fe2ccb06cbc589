// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package aitopics

import (
	"reflect"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// TopicDefinition contains metadata about a topic.
type TopicDefinition struct {
	Name        string        // Topic name
	Version     string        // API version
	Description string        // Human-readable description
	InputType   reflect.Type  // Payload type carried by ChangeMsg for this topic
	Timeout     time.Duration // Suggested dispatch timeout
	Async       bool          // Whether subscribers are notified asynchronously
}

// TopicRegistry contains all registered topics with their metadata.
var TopicRegistry = map[string]TopicDefinition{
	TopicFlowStatusChanged: {
		Name:        TopicFlowStatusChanged,
		Version:     CurrentVersion,
		Description: "WorkflowInstance status transition",
		InputType:   reflect.TypeOf(domain.FlowChange{}),
		Timeout:     5 * time.Second,
		Async:       true,
	},
	TopicNodeStatusChanged: {
		Name:        TopicNodeStatusChanged,
		Version:     CurrentVersion,
		Description: "NodeInstance status transition",
		InputType:   reflect.TypeOf(domain.NodeChange{}),
		Timeout:     5 * time.Second,
		Async:       true,
	},
	TopicTaskStatusChanged: {
		Name:        TopicTaskStatusChanged,
		Version:     CurrentVersion,
		Description: "Task status transition",
		InputType:   reflect.TypeOf(domain.TaskChange{}),
		Timeout:     5 * time.Second,
		Async:       true,
	},
}

// GetTopicDefinition returns the definition for a topic.
func GetTopicDefinition(topic string) (TopicDefinition, bool) {
	def, ok := TopicRegistry[topic]
	return def, ok
}

// GetTopicTimeout returns the suggested timeout for a topic.
func GetTopicTimeout(topic string) time.Duration {
	if def, ok := TopicRegistry[topic]; ok {
		return def.Timeout
	}
	return 5 * time.Second // Default timeout
}

// IsAsyncTopic returns whether a topic should run asynchronously.
func IsAsyncTopic(topic string) bool {
	if def, ok := TopicRegistry[topic]; ok {
		return def.Async
	}
	return false
}

// ListTopics returns all registered topic names.
func ListTopics() []string {
	topics := make([]string, 0, len(TopicRegistry))
	for topic := range TopicRegistry {
		topics = append(topics, topic)
	}
	return topics
}

// TopicForScope maps a ChangeMsg scope to its bus topic.
func TopicForScope(scope domain.ChangeScope) string {
	switch scope {
	case domain.ScopeFlow:
		return TopicFlowStatusChanged
	case domain.ScopeNode:
		return TopicNodeStatusChanged
	case domain.ScopeTask:
		return TopicTaskStatusChanged
	default:
		return ""
	}
}
