// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package aitopics

import (
	"testing"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGetTopicDefinition(t *testing.T) {
	def, ok := GetTopicDefinition(TopicNodeStatusChanged)
	assert.True(t, ok)
	assert.Equal(t, TopicNodeStatusChanged, def.Name)
	assert.True(t, def.Async)

	_, ok = GetTopicDefinition("nope")
	assert.False(t, ok)
}

func TestGetTopicTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetTopicTimeout(TopicFlowStatusChanged))
	assert.Equal(t, 5*time.Second, GetTopicTimeout("unknown-topic"))
}

func TestIsAsyncTopic(t *testing.T) {
	assert.True(t, IsAsyncTopic(TopicTaskStatusChanged))
	assert.False(t, IsAsyncTopic("unknown-topic"))
}

func TestListTopics(t *testing.T) {
	topics := ListTopics()
	assert.Len(t, topics, 3)
	assert.Contains(t, topics, TopicFlowStatusChanged)
	assert.Contains(t, topics, TopicNodeStatusChanged)
	assert.Contains(t, topics, TopicTaskStatusChanged)
}

func TestTopicForScope(t *testing.T) {
	assert.Equal(t, TopicFlowStatusChanged, TopicForScope(domain.ScopeFlow))
	assert.Equal(t, TopicNodeStatusChanged, TopicForScope(domain.ScopeNode))
	assert.Equal(t, TopicTaskStatusChanged, TopicForScope(domain.ScopeTask))
	assert.Equal(t, "", TopicForScope(domain.ChangeScope("bogus")))
}
