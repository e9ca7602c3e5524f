package api

import "encoding/json"

// CallOptions carries the canonical, vendor-independent parameters for a
// single generation call. It is immutable for the duration of the call.
type CallOptions struct {
	Prompt []Message

	MaxOutputTokens  *int
	Temperature      *float64
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Seed             *int
	StopSequences    []string

	ResponseFormat *ResponseFormat
	Tools          []Tool
	ToolChoice     *ToolChoice

	// ProviderOptions is the vendor-specific side channel. It is validated
	// against a closed schema at request-build time; invalid values fail the
	// call before anything is sent.
	ProviderOptions json.RawMessage

	// IncludeRawChunks requests Raw passthrough events for every upstream
	// stream chunk.
	IncludeRawChunks bool
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one role-tagged turn of the canonical prompt.
type Message struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// MessagePart content types.
const (
	PartText       = "text"
	PartFile       = "file"
	PartToolCall   = "tool-call"
	PartToolResult = "tool-result"
)

// MessagePart is a single content fragment of a prompt message.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type MessagePart struct {
	Type string `json:"type"`

	// PartText
	Text string `json:"text,omitempty"`

	// PartFile: Data is a data URI, raw base64, or an http(s) URL.
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	Filename  string `json:"filename,omitempty"`

	// PartToolCall / PartToolResult
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	Input      string `json:"input,omitempty"`  // JSON-encoded arguments
	Output     string `json:"output,omitempty"` // JSON-encoded result
}

// Tool types. "function" is a client-executed tool; the rest are executed by
// the vendor.
const (
	ToolFunction        = "function"
	ToolWebSearch       = "web_search"
	ToolCodeInterpreter = "code_interpreter"
	ToolFileSearch      = "file_search"
	ToolImageGeneration = "image_generation"
	ToolComputerUse     = "computer_use_preview"
	ToolLocalShell      = "local_shell"
)

// Tool declares one tool the model may call.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`

	// Provider-executed tool arguments.
	Container         string   `json:"container,omitempty"`           // code_interpreter
	VectorStoreIDs    []string `json:"vector_store_ids,omitempty"`    // file_search
	SearchContextSize string   `json:"search_context_size,omitempty"` // web_search
	DisplayWidth      int      `json:"display_width,omitempty"`       // computer_use
	DisplayHeight     int      `json:"display_height,omitempty"`      // computer_use
	Environment       string   `json:"environment,omitempty"`         // computer_use
}

// ToolChoice modes.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
	ToolChoiceTool     = "tool"
)

// ToolChoice constrains which tool (if any) the model must call.
type ToolChoice struct {
	Mode     string `json:"mode"`
	ToolName string `json:"tool_name,omitempty"` // ToolChoiceTool only
}

// ResponseFormat types.
const (
	ResponseFormatText = "text"
	ResponseFormatJSON = "json"
)

// ResponseFormat requests plain text or schema-constrained JSON output.
type ResponseFormat struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
}
