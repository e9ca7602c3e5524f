package wire

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Stream event type tags this engine recognizes. Unknown tags are preserved
// in StreamEvent.Type and ignored by the normalizer (forward compatibility).
const (
	EventResponseCreated    = "response.created"
	EventOutputItemAdded    = "response.output_item.added"
	EventOutputItemDone     = "response.output_item.done"
	EventOutputTextDelta    = "response.output_text.delta"
	EventFunctionArgsDelta  = "response.function_call_arguments.delta"
	EventCodeDelta          = "response.code_interpreter_call_code.delta"
	EventCodeDone           = "response.code_interpreter_call_code.done"
	EventPartialImage       = "response.image_generation_call.partial_image"
	EventAnnotationAdded    = "response.output_text.annotation.added"
	EventSummaryPartAdded   = "response.reasoning_summary_part.added"
	EventSummaryTextDelta   = "response.reasoning_summary_text.delta"
	EventResponseCompleted  = "response.completed"
	EventResponseIncomplete = "response.incomplete"
	EventResponseFailed     = "response.failed"
	EventError              = "error"
)

// StreamEvent is one parsed upstream stream event.
// Uses a flat discriminated union pattern: Type determines which fields are
// relevant.
type StreamEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number,omitempty"`

	// Positional index of the output item this event belongs to. Lifecycle
	// state is keyed by this index, never by ItemID: some vendors rotate
	// item ids mid-stream.
	OutputIndex  int    `json:"output_index,omitempty"`
	ItemID       string `json:"item_id,omitempty"`
	ContentIndex int    `json:"content_index,omitempty"`
	SummaryIndex int    `json:"summary_index,omitempty"`

	Delta string `json:"delta,omitempty"`
	Text  string `json:"text,omitempty"`

	Item       *Item        `json:"item,omitempty"`
	Part       *SummaryPart `json:"part,omitempty"`
	Annotation *Annotation  `json:"annotation,omitempty"`
	Response   *Document    `json:"response,omitempty"`
	Logprobs   []Logprob    `json:"logprobs,omitempty"`

	// response.image_generation_call.partial_image
	PartialImageB64   string `json:"partial_image_b64,omitempty"`
	PartialImageIndex int    `json:"partial_image_index,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`

	// Raw is the original event payload, kept for Raw passthrough.
	Raw json.RawMessage `json:"-"`
}

// ParseStreamEvent decodes one upstream event payload. The type tag is peeked
// first so payloads without one are rejected before a full decode.
func ParseStreamEvent(data []byte) (*StreamEvent, error) {
	tag := gjson.GetBytes(data, "type")
	if !tag.Exists() || tag.String() == "" {
		return nil, &ParseError{Data: data, Reason: "missing event type tag"}
	}
	var evt StreamEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, &ParseError{Data: data, Reason: err.Error()}
	}
	evt.Raw = json.RawMessage(append([]byte(nil), data...))
	return &evt, nil
}

// ParseError reports a malformed upstream event. The normalizer degrades it
// to a canonical Error event instead of aborting the stream.
type ParseError struct {
	Data   []byte
	Reason string
}

func (e *ParseError) Error() string {
	return "malformed stream event: " + e.Reason
}
