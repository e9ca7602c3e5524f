package wire

import "encoding/json"

// Document is one complete (non-stream) Responses API response.
type Document struct {
	ID                string             `json:"id"`
	Model             string             `json:"model"`
	CreatedAt         float64            `json:"created_at"`
	Status            string             `json:"status,omitempty"`
	Output            []Item             `json:"output"`
	Usage             *Usage             `json:"usage,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	ServiceTier       string             `json:"service_tier,omitempty"`
	Error             *Error             `json:"error,omitempty"`
}

// IncompleteDetails explains why a response stopped early.
type IncompleteDetails struct {
	Reason string `json:"reason"`
}

// Error is the vendor error object.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Usage is the vendor token accounting object.
type Usage struct {
	InputTokens        int64 `json:"input_tokens"`
	OutputTokens       int64 `json:"output_tokens"`
	TotalTokens        int64 `json:"total_tokens"`
	InputTokensDetails *struct {
		CachedTokens int64 `json:"cached_tokens"`
	} `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *struct {
		ReasoningTokens int64 `json:"reasoning_tokens"`
	} `json:"output_tokens_details,omitempty"`
}

// Output item type tags.
const (
	ItemMessage             = "message"
	ItemReasoning           = "reasoning"
	ItemFunctionCall        = "function_call"
	ItemWebSearchCall       = "web_search_call"
	ItemComputerCall        = "computer_call"
	ItemFileSearchCall      = "file_search_call"
	ItemCodeInterpreterCall = "code_interpreter_call"
	ItemImageGenerationCall = "image_generation_call"
	ItemLocalShellCall      = "local_shell_call"
)

// Item is one entry of a response output list (or of a stream item event).
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type Item struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// message
	Role    string    `json:"role,omitempty"`
	Content []Content `json:"content,omitempty"`

	// reasoning
	EncryptedContent string        `json:"encrypted_content,omitempty"`
	Summary          []SummaryPart `json:"summary,omitempty"`

	// function_call / local_shell_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// web_search_call / computer_call / local_shell_call
	Action json.RawMessage `json:"action,omitempty"`

	// file_search_call
	Queries []string        `json:"queries,omitempty"`
	Results json.RawMessage `json:"results,omitempty"`

	// code_interpreter_call
	Code        string          `json:"code,omitempty"`
	ContainerID string          `json:"container_id,omitempty"`
	Outputs     json.RawMessage `json:"outputs,omitempty"`

	// image_generation_call
	Result string `json:"result,omitempty"`
}

// Content is one fragment of a message item.
type Content struct {
	Type        string       `json:"type"` // "output_text", "refusal"
	Text        string       `json:"text,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Logprobs    []Logprob    `json:"logprobs,omitempty"`
}

// SummaryPart is one reasoning summary segment.
type SummaryPart struct {
	Type string `json:"type"` // "summary_text"
	Text string `json:"text"`
}

// Annotation citation kinds.
const (
	AnnotationURLCitation  = "url_citation"
	AnnotationFileCitation = "file_citation"
)

// Annotation is a citation attached to an output text fragment.
type Annotation struct {
	Type       string `json:"type"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	FileID     string `json:"file_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Quote      string `json:"quote,omitempty"`
	StartIndex int    `json:"start_index,omitempty"`
	EndIndex   int    `json:"end_index,omitempty"`
}

// Logprob is one sampled-token log probability.
type Logprob struct {
	Token       string       `json:"token"`
	Logprob     float64      `json:"logprob"`
	TopLogprobs []TopLogprob `json:"top_logprobs,omitempty"`
}

// TopLogprob is one alternative token candidate.
type TopLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}
