package api

import (
	"encoding/json"
	"time"
)

// EventType identifies a canonical stream event.
type EventType string

// Canonical stream event types. Every stream begins with EventStreamStart and
// ends with exactly one EventFinish.
const (
	EventStreamStart      EventType = "stream-start"
	EventResponseMetadata EventType = "response-metadata"
	EventTextStart        EventType = "text-start"
	EventTextDelta        EventType = "text-delta"
	EventTextEnd          EventType = "text-end"
	EventReasoningStart   EventType = "reasoning-start"
	EventReasoningDelta   EventType = "reasoning-delta"
	EventReasoningEnd     EventType = "reasoning-end"
	EventToolInputStart   EventType = "tool-input-start"
	EventToolInputDelta   EventType = "tool-input-delta"
	EventToolInputEnd     EventType = "tool-input-end"
	EventToolCall         EventType = "tool-call"
	EventToolResult       EventType = "tool-result"
	EventSource           EventType = "source"
	EventRaw              EventType = "raw"
	EventError            EventType = "error"
	EventFinish           EventType = "finish"
)

// FinishReason summarizes why generation stopped.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content-filter"
	FinishToolCalls     FinishReason = "tool-calls"
	FinishError         FinishReason = "error"
	FinishUnknown       FinishReason = "unknown"
)

// StreamEvent is the unified canonical stream event.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type StreamEvent struct {
	Type EventType `json:"type"`

	// Lifecycle id for text/reasoning/tool-input start/delta/end events.
	ID string `json:"id,omitempty"`

	// Text/reasoning/tool-input delta payload.
	Delta string `json:"delta,omitempty"`

	// EventStreamStart
	Warnings []Warning `json:"warnings,omitempty"`

	// EventResponseMetadata
	ResponseID string    `json:"response_id,omitempty"`
	ModelID    string    `json:"model_id,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitzero"`

	// EventToolInputStart / EventToolCall / EventToolResult
	ToolCallID       string `json:"tool_call_id,omitempty"`
	ToolName         string `json:"tool_name,omitempty"`
	Input            string `json:"input,omitempty"`
	Result           any    `json:"result,omitempty"`
	ProviderExecuted bool   `json:"provider_executed,omitempty"`
	// Preliminary marks a non-terminal EventToolResult (more may follow).
	Preliminary bool `json:"preliminary,omitempty"`

	// EventSource
	Source *ContentPart `json:"source,omitempty"`

	// EventRaw
	Raw json.RawMessage `json:"raw,omitempty"`

	// EventError
	Err          error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// EventFinish
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        Usage        `json:"usage,omitzero"`

	// Vendor side metadata: encrypted reasoning payloads on reasoning events,
	// logprobs/service tier on finish, and similar.
	ProviderMetadata map[string]any `json:"provider_metadata,omitempty"`
}

// Usage is the canonical token accounting for one call.
type Usage struct {
	InputTokens       int64 `json:"input_tokens"`
	OutputTokens      int64 `json:"output_tokens"`
	TotalTokens       int64 `json:"total_tokens"`
	ReasoningTokens   int64 `json:"reasoning_tokens,omitempty"`
	CachedInputTokens int64 `json:"cached_input_tokens,omitempty"`
}

// WarningUnsupportedSetting is the only warning kind: a requested setting the
// vendor or model cannot honor was dropped.
const WarningUnsupportedSetting = "unsupported-setting"

// Warning is an advisory attached to a result. Warnings are collected, never
// returned as errors.
type Warning struct {
	Kind    string `json:"kind"`
	Setting string `json:"setting"`
	Detail  string `json:"detail,omitempty"`
}

// UnsupportedSetting builds the standard warning for a dropped setting.
func UnsupportedSetting(setting, detail string) Warning {
	return Warning{Kind: WarningUnsupportedSetting, Setting: setting, Detail: detail}
}

// Response is the canonical non-stream result.
type Response struct {
	Content      []ContentPart  `json:"content"`
	FinishReason FinishReason   `json:"finish_reason"`
	Usage        Usage          `json:"usage"`
	Warnings     []Warning      `json:"warnings,omitempty"`
	ResponseID   string         `json:"response_id,omitempty"`
	ModelID      string         `json:"model_id,omitempty"`
	Timestamp    time.Time      `json:"timestamp,omitzero"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
