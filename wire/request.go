// Package wire defines the vendor (Responses API) request and response
// shapes, plus the tag-based classifier that routes items and stream events
// to their handlers. Field names are bit-exact vendor wire names.
package wire

// Request is the full Responses API request body.
type Request struct {
	Model              string         `json:"model"`
	Input              []InputItem    `json:"input"`
	Instructions       string         `json:"instructions,omitempty"`
	MaxOutputTokens    *int           `json:"max_output_tokens,omitempty"`
	Temperature        *float64       `json:"temperature,omitempty"`
	TopP               *float64       `json:"top_p,omitempty"`
	TopLogprobs        int            `json:"top_logprobs,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	ParallelToolCalls  *bool          `json:"parallel_tool_calls,omitempty"`
	PreviousResponseID string         `json:"previous_response_id,omitempty"`
	PromptCacheKey     string         `json:"prompt_cache_key,omitempty"`
	Store              *bool          `json:"store,omitempty"`
	User               string         `json:"user,omitempty"`
	ServiceTier        string         `json:"service_tier,omitempty"`
	Include            []string       `json:"include,omitempty"`
	Reasoning          *Reasoning     `json:"reasoning,omitempty"`
	Text               *TextConfig    `json:"text,omitempty"`
	Truncation         string         `json:"truncation,omitempty"`
	Tools              []Tool         `json:"tools,omitempty"`
	ToolChoice         any            `json:"tool_choice,omitempty"`
	Stream             bool           `json:"stream,omitempty"`
}

// Reasoning configures reasoning effort and summary emission.
type Reasoning struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// TextConfig configures the output text format and verbosity.
type TextConfig struct {
	Format    *TextFormat `json:"format,omitempty"`
	Verbosity string      `json:"verbosity,omitempty"`
}

// TextFormat is the structured-output format descriptor.
type TextFormat struct {
	Type        string         `json:"type"` // "text", "json_object", "json_schema"
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`
}

// Tool is a vendor tool declaration.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type Tool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Strict      *bool          `json:"strict,omitempty"`

	Container         any      `json:"container,omitempty"`           // code_interpreter
	VectorStoreIDs    []string `json:"vector_store_ids,omitempty"`    // file_search
	SearchContextSize string   `json:"search_context_size,omitempty"` // web_search
	DisplayWidth      int      `json:"display_width,omitempty"`       // computer_use_preview
	DisplayHeight     int      `json:"display_height,omitempty"`      // computer_use_preview
	Environment       string   `json:"environment,omitempty"`         // computer_use_preview
}

// InputItem is a single item of the request input array.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type InputItem struct {
	Type    string         `json:"type,omitempty"`
	Role    string         `json:"role,omitempty"`
	Content []InputContent `json:"content,omitempty"`

	// function_call / function_call_output
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// InputContent is a content fragment of an input message.
type InputContent struct {
	Type     string `json:"type"` // "input_text", "output_text", "input_image", "input_file"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"`
}

// Tool-choice object sent when a specific tool is forced.
type toolChoiceFunction struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// ToolChoiceMode returns the wire value for an auto/none/required mode.
func ToolChoiceMode(mode string) any { return mode }

// ToolChoiceFunction returns the wire object forcing a named function tool.
func ToolChoiceFunction(name string) any {
	return toolChoiceFunction{Type: "function", Name: name}
}

// ToolChoiceProviderTool returns the wire object forcing a provider tool type.
func ToolChoiceProviderTool(toolType string) any {
	return toolChoiceFunction{Type: toolType}
}
