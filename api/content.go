package api

// ContentPart types.
const (
	ContentText       = "text"
	ContentReasoning  = "reasoning"
	ContentToolCall   = "tool-call"
	ContentToolResult = "tool-result"
	ContentSource     = "source"
)

// Source types for ContentSource parts.
const (
	SourceURL      = "url"
	SourceDocument = "document"
)

// ContentPart is one element of a canonical non-stream response.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type ContentPart struct {
	Type string `json:"type"`

	// ContentText / ContentReasoning
	Text string `json:"text,omitempty"`

	// ContentReasoning: id of the vendor reasoning item this segment belongs
	// to, plus any opaque encrypted payload carried alongside it.
	ItemID           string `json:"item_id,omitempty"`
	EncryptedContent string `json:"encrypted_content,omitempty"`

	// ContentToolCall / ContentToolResult
	ToolCallID       string `json:"tool_call_id,omitempty"`
	ToolName         string `json:"tool_name,omitempty"`
	Input            string `json:"input,omitempty"` // JSON-encoded arguments
	Result           any    `json:"result,omitempty"`
	ProviderExecuted bool   `json:"provider_executed,omitempty"`

	// ContentSource
	SourceType string `json:"source_type,omitempty"`
	ID         string `json:"id,omitempty"`
	URL        string `json:"url,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Title      string `json:"title,omitempty"`
}
