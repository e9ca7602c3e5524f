package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForReasoningFamilies(t *testing.T) {
	tests := []struct {
		model     string
		reasoning bool
		mode      SystemMessageMode
	}{
		{"gpt-5", true, SystemMessageDeveloper},
		{"gpt-5-mini", true, SystemMessageDeveloper},
		{"o3", true, SystemMessageDeveloper},
		{"o4-mini", true, SystemMessageDeveloper},
		{"o1", true, SystemMessageDeveloper},
		{"codex-mini-latest", true, SystemMessageDeveloper},
		{"computer-use-preview", true, SystemMessageDeveloper},

		{"o1-mini", true, SystemMessageRemove},
		{"o1-preview", true, SystemMessageRemove},

		{"gpt-5-chat-latest", false, SystemMessageSystem},
		{"gpt-4o", false, SystemMessageSystem},
		{"gpt-4.1", false, SystemMessageSystem},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			caps := For(tt.model)
			assert.Equal(t, tt.reasoning, caps.IsReasoningModel)
			assert.Equal(t, tt.mode, caps.SystemMessageMode)
		})
	}
}

func TestForServiceTiers(t *testing.T) {
	tests := []struct {
		model    string
		flex     bool
		priority bool
	}{
		{"o3", true, true},
		{"o4-mini", true, true},
		{"gpt-5", true, true},
		{"gpt-4o", false, true},
		{"gpt-5-chat-latest", false, false},
		{"o1", false, false},
		{"codex-mini-latest", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			caps := For(tt.model)
			assert.Equal(t, tt.flex, caps.SupportsFlexTier, "flex")
			assert.Equal(t, tt.priority, caps.SupportsPriorityTier, "priority")
		})
	}
}

func TestForTruncationAndStore(t *testing.T) {
	assert.True(t, For("computer-use-preview").RequiredAutoTruncation)
	assert.False(t, For("gpt-5").RequiredAutoTruncation)

	assert.True(t, For("codex-mini-latest").ForcesStoreDisabled)
	assert.False(t, For("gpt-5").ForcesStoreDisabled)
}

func TestForIsTotal(t *testing.T) {
	caps := For("some-future-model")
	assert.False(t, caps.IsReasoningModel)
	assert.Equal(t, SystemMessageSystem, caps.SystemMessageMode)

	caps = For("")
	assert.Equal(t, SystemMessageSystem, caps.SystemMessageMode)
}

func TestForNormalizesCase(t *testing.T) {
	assert.True(t, For("  GPT-5  ").IsReasoningModel)
}
