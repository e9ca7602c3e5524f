package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/response"
	"github.com/n0madic/go-responses-adapter/wire"
)

// MaxCodeBufSize is the upper bound (in bytes) for accumulated
// code-interpreter code per tool call.
const MaxCodeBufSize = 1 << 20 // 1 MB

// toolCallState tracks one open tool-call item. Keyed by output_index, never
// by vendor item id: item ids may rotate mid-stream.
type toolCallState struct {
	kind        string // wire item type
	toolName    string
	canonicalID string

	inputOpen   bool
	callEmitted bool

	// code_interpreter only
	containerID string
	code        strings.Builder
}

// reasoningState tracks one open reasoning item and its summary segments.
type reasoningState struct {
	canonicalID  string
	encrypted    string
	openSegments []int
}

// Options configure a Normalizer for one call.
type Options struct {
	// IncludeRaw requests a Raw passthrough event per upstream chunk.
	IncludeRaw bool
	// CollectLogprobs forwards and accumulates log-probability samples.
	CollectLogprobs bool
}

// Normalizer is the single-pass stream transform. It owns all per-call
// mutable state and is not safe for concurrent use; each call gets its own.
type Normalizer struct {
	opts Options

	toolCalls map[int]*toolCallState
	reasoning map[int]*reasoningState
	textID    string

	hasFunctionCall  bool
	sawCompletion    bool
	errored          bool
	incompleteReason string
	usage            api.Usage
	serviceTier      string
	responseID       string
	logprobs         []wire.Logprob

	finished  bool
	anomalies int
}

// NewNormalizer creates an empty normalizer for one call.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{
		opts:      opts,
		toolCalls: map[int]*toolCallState{},
		reasoning: map[int]*reasoningState{},
	}
}

// Start returns the synthetic stream-start event carried before any upstream
// event is processed.
func (n *Normalizer) Start(warnings []api.Warning) api.StreamEvent {
	return api.StreamEvent{Type: api.EventStreamStart, Warnings: warnings}
}

// Anomalies reports how many protocol non-conformances were tolerated
// (entries closed without being opened, or left open at flush).
func (n *Normalizer) Anomalies() int { return n.anomalies }

// Process consumes one raw upstream payload and returns the canonical events
// it produces, in order. A malformed payload degrades to an Error event and
// sets the finish reason to "error"; the stream continues.
func (n *Normalizer) Process(data []byte) []api.StreamEvent {
	evt, err := wire.ParseStreamEvent(data)
	if err != nil {
		n.errored = true
		return []api.StreamEvent{{Type: api.EventError, Err: err, ErrorMessage: err.Error()}}
	}

	var events []api.StreamEvent
	if n.opts.IncludeRaw {
		events = append(events, api.StreamEvent{Type: api.EventRaw, Raw: evt.Raw})
	}

	switch evt.Type {
	case wire.EventResponseCreated:
		events = append(events, n.onResponseCreated(evt)...)
	case wire.EventOutputItemAdded:
		events = append(events, n.onItemAdded(evt)...)
	case wire.EventOutputItemDone:
		events = append(events, n.onItemDone(evt)...)
	case wire.EventOutputTextDelta:
		events = append(events, n.onTextDelta(evt)...)
	case wire.EventFunctionArgsDelta:
		events = append(events, n.onArgumentsDelta(evt)...)
	case wire.EventCodeDelta:
		events = append(events, n.onCodeDelta(evt)...)
	case wire.EventCodeDone:
		events = append(events, n.onCodeDone(evt)...)
	case wire.EventPartialImage:
		events = append(events, n.onPartialImage(evt)...)
	case wire.EventAnnotationAdded:
		events = append(events, n.onAnnotation(evt)...)
	case wire.EventSummaryPartAdded:
		events = append(events, n.onSummaryPartAdded(evt)...)
	case wire.EventSummaryTextDelta:
		events = append(events, n.onSummaryTextDelta(evt)...)
	case wire.EventResponseCompleted, wire.EventResponseIncomplete:
		n.onCompletion(evt)
	case wire.EventResponseFailed:
		events = append(events, n.onFailed(evt)...)
	case wire.EventError:
		events = append(events, api.StreamEvent{
			Type:         api.EventError,
			ErrorMessage: evt.Message,
			Err:          fmt.Errorf("upstream error: %s", evt.Message),
		})
	default:
		// Unknown event tag: ignored for forward compatibility.
	}

	return events
}

// Flush closes remaining text state and emits the terminal Finish event.
// Idempotent: a second flush emits nothing.
func (n *Normalizer) Flush() []api.StreamEvent {
	if n.finished {
		return nil
	}
	n.finished = true

	var events []api.StreamEvent
	if n.textID != "" {
		events = append(events, api.StreamEvent{Type: api.EventTextEnd, ID: n.textID})
		n.textID = ""
	}

	// Tool-call and reasoning entries still open here are upstream
	// non-conformance: a well-formed stream closes every item it opens.
	// They are left without terminal events, only counted.
	if open := len(n.toolCalls) + countOpenSegments(n.reasoning); open > 0 {
		n.anomalies += open
		slog.Warn("stream ended with open items", "open", open)
	}

	events = append(events, api.StreamEvent{
		Type:             api.EventFinish,
		FinishReason:     n.finishReason(),
		Usage:            n.usage,
		ProviderMetadata: n.finishMetadata(),
	})
	return events
}

func (n *Normalizer) finishReason() api.FinishReason {
	if n.errored {
		return api.FinishError
	}
	if !n.sawCompletion {
		if n.hasFunctionCall {
			return api.FinishToolCalls
		}
		return api.FinishUnknown
	}
	return response.MapFinishReason(n.incompleteReason, n.hasFunctionCall)
}

func (n *Normalizer) finishMetadata() map[string]any {
	meta := map[string]any{}
	if n.responseID != "" {
		meta["response_id"] = n.responseID
	}
	if n.serviceTier != "" {
		meta["service_tier"] = n.serviceTier
	}
	if len(n.logprobs) > 0 {
		meta["logprobs"] = n.logprobs
	}
	if len(meta) == 0 {
		return nil
	}
	return map[string]any{"openai": meta}
}

func (n *Normalizer) onResponseCreated(evt *wire.StreamEvent) []api.StreamEvent {
	if evt.Response == nil {
		return nil
	}
	n.responseID = evt.Response.ID
	return []api.StreamEvent{{
		Type:       api.EventResponseMetadata,
		ResponseID: evt.Response.ID,
		ModelID:    evt.Response.Model,
		Timestamp:  time.Unix(int64(evt.Response.CreatedAt), 0).UTC(),
	}}
}

func (n *Normalizer) onItemAdded(evt *wire.StreamEvent) []api.StreamEvent {
	item := evt.Item
	if item == nil {
		n.anomalies++
		return nil
	}

	switch {
	case item.Type == wire.ItemMessage:
		var events []api.StreamEvent
		if n.textID != "" {
			n.anomalies++
			events = append(events, api.StreamEvent{Type: api.EventTextEnd, ID: n.textID})
		}
		n.textID = textID(item.ID)
		return append(events, api.StreamEvent{Type: api.EventTextStart, ID: n.textID})

	case item.Type == wire.ItemReasoning:
		rs := &reasoningState{
			canonicalID:  item.ID,
			encrypted:    item.EncryptedContent,
			openSegments: []int{0},
		}
		n.reasoning[evt.OutputIndex] = rs
		// The first segment's start is signaled here, not by a later
		// summary_part.added event.
		return []api.StreamEvent{{Type: api.EventReasoningStart, ID: segmentID(rs.canonicalID, 0)}}

	case wire.IsIncrementalToolItem(item.Type):
		st := &toolCallState{
			kind:        item.Type,
			toolName:    wire.ToolName(item),
			canonicalID: wire.CanonicalToolCallID(item),
			inputOpen:   true,
			containerID: item.ContainerID,
		}
		n.toolCalls[evt.OutputIndex] = st
		events := []api.StreamEvent{{
			Type:             api.EventToolInputStart,
			ID:               st.canonicalID,
			ToolName:         st.toolName,
			ProviderExecuted: wire.IsProviderExecuted(item.Type),
		}}
		if item.Type == wire.ItemCodeInterpreterCall {
			// Opening fragment embedding the container id, so appended
			// escaped code deltas keep the assembled input well-formed.
			events = append(events, api.StreamEvent{
				Type:  api.EventToolInputDelta,
				ID:    st.canonicalID,
				Delta: `{"containerId":` + mustJSONString(st.containerID) + `,"code":"`,
			})
		}
		return events

	case wire.IsImmediateToolItem(item.Type):
		return n.immediateToolEvents(item)
	}

	return nil
}

func (n *Normalizer) onItemDone(evt *wire.StreamEvent) []api.StreamEvent {
	item := evt.Item
	if item == nil {
		n.anomalies++
		return nil
	}

	switch {
	case item.Type == wire.ItemMessage:
		if n.textID == "" {
			return nil
		}
		id := n.textID
		n.textID = ""
		return []api.StreamEvent{{Type: api.EventTextEnd, ID: id}}

	case item.Type == wire.ItemReasoning:
		rs := n.reasoning[evt.OutputIndex]
		if rs == nil {
			n.anomalies++
			return nil
		}
		if item.EncryptedContent != "" {
			rs.encrypted = item.EncryptedContent
		}
		events := make([]api.StreamEvent, 0, len(rs.openSegments))
		for _, seg := range rs.openSegments {
			events = append(events, api.StreamEvent{
				Type:             api.EventReasoningEnd,
				ID:               segmentID(rs.canonicalID, seg),
				ProviderMetadata: reasoningMetadata(rs),
			})
		}
		delete(n.reasoning, evt.OutputIndex)
		return events

	case item.Type == wire.ItemLocalShellCall:
		return []api.StreamEvent{{
			Type:             api.EventToolCall,
			ToolCallID:       wire.CanonicalToolCallID(item),
			ToolName:         wire.ToolName(item),
			Input:            wire.ToolCallInput(item),
			ProviderExecuted: true,
		}}

	case wire.IsImmediateToolItem(item.Type):
		// Terminal call and result were already emitted at item-add time.
		return nil

	case wire.IsIncrementalToolItem(item.Type):
		return n.closeIncrementalTool(evt.OutputIndex, item)
	}

	return nil
}

func (n *Normalizer) closeIncrementalTool(index int, item *wire.Item) []api.StreamEvent {
	var events []api.StreamEvent

	st := n.toolCalls[index]
	if st == nil {
		n.anomalies++
	} else if st.inputOpen {
		st.inputOpen = false
		events = append(events, api.StreamEvent{Type: api.EventToolInputEnd, ID: st.canonicalID})
	}
	delete(n.toolCalls, index)

	if item.Type == wire.ItemFunctionCall {
		n.hasFunctionCall = true
	}

	if st == nil || !st.callEmitted {
		events = append(events, api.StreamEvent{
			Type:             api.EventToolCall,
			ToolCallID:       wire.CanonicalToolCallID(item),
			ToolName:         wire.ToolName(item),
			Input:            wire.ToolCallInput(item),
			ProviderExecuted: wire.IsProviderExecuted(item.Type),
		})
	}
	if result, ok := wire.ToolCallResult(item); ok {
		events = append(events, api.StreamEvent{
			Type:             api.EventToolResult,
			ToolCallID:       wire.CanonicalToolCallID(item),
			ToolName:         wire.ToolName(item),
			Result:           result,
			ProviderExecuted: true,
		})
	}
	return events
}

func (n *Normalizer) immediateToolEvents(item *wire.Item) []api.StreamEvent {
	events := []api.StreamEvent{{
		Type:             api.EventToolCall,
		ToolCallID:       wire.CanonicalToolCallID(item),
		ToolName:         wire.ToolName(item),
		Input:            wire.ToolCallInput(item),
		ProviderExecuted: true,
	}}
	if result, ok := wire.ToolCallResult(item); ok {
		events = append(events, api.StreamEvent{
			Type:             api.EventToolResult,
			ToolCallID:       wire.CanonicalToolCallID(item),
			ToolName:         wire.ToolName(item),
			Result:           result,
			ProviderExecuted: true,
		})
	}
	return events
}

func (n *Normalizer) onTextDelta(evt *wire.StreamEvent) []api.StreamEvent {
	var events []api.StreamEvent
	if n.textID == "" {
		// The message's item-added event was not observed, or the vendor
		// rotated its id. Open a text part from this event's item id.
		n.textID = textID(evt.ItemID)
		events = append(events, api.StreamEvent{Type: api.EventTextStart, ID: n.textID})
	}

	delta := api.StreamEvent{Type: api.EventTextDelta, ID: n.textID, Delta: evt.Delta}
	if n.opts.CollectLogprobs && len(evt.Logprobs) > 0 {
		n.logprobs = append(n.logprobs, evt.Logprobs...)
		delta.ProviderMetadata = map[string]any{"openai": map[string]any{"logprobs": evt.Logprobs}}
	}
	return append(events, delta)
}

func (n *Normalizer) onArgumentsDelta(evt *wire.StreamEvent) []api.StreamEvent {
	st := n.toolCalls[evt.OutputIndex]
	if st == nil {
		n.anomalies++
		return nil
	}
	return []api.StreamEvent{{Type: api.EventToolInputDelta, ID: st.canonicalID, Delta: evt.Delta}}
}

func (n *Normalizer) onCodeDelta(evt *wire.StreamEvent) []api.StreamEvent {
	st := n.toolCalls[evt.OutputIndex]
	if st == nil {
		n.anomalies++
		return nil
	}
	if st.code.Len()+len(evt.Delta) > MaxCodeBufSize {
		slog.Warn("code buffer limit exceeded, dropping delta",
			"tool_call_id", st.canonicalID, "buf_len", st.code.Len(), "delta_len", len(evt.Delta))
		return nil
	}
	st.code.WriteString(evt.Delta)
	// The assembled input is itself a JSON string literal under construction;
	// the raw code delta must be re-escaped before forwarding.
	return []api.StreamEvent{{
		Type:  api.EventToolInputDelta,
		ID:    st.canonicalID,
		Delta: jsonEscapeFragment(evt.Delta),
	}}
}

func (n *Normalizer) onCodeDone(evt *wire.StreamEvent) []api.StreamEvent {
	st := n.toolCalls[evt.OutputIndex]
	if st == nil {
		n.anomalies++
		return nil
	}
	code := evt.Code
	if code == "" {
		code = st.code.String()
	}
	st.inputOpen = false
	st.callEmitted = true
	input, _ := json.Marshal(map[string]string{
		"code":        code,
		"containerId": st.containerID,
	})
	return []api.StreamEvent{
		{Type: api.EventToolInputDelta, ID: st.canonicalID, Delta: `"}`},
		{Type: api.EventToolInputEnd, ID: st.canonicalID},
		{
			Type:             api.EventToolCall,
			ToolCallID:       st.canonicalID,
			ToolName:         st.toolName,
			Input:            string(input),
			ProviderExecuted: true,
		},
	}
}

func (n *Normalizer) onPartialImage(evt *wire.StreamEvent) []api.StreamEvent {
	id := evt.ItemID
	if st := n.toolCalls[evt.OutputIndex]; st != nil {
		id = st.canonicalID
	}
	return []api.StreamEvent{{
		Type:             api.EventToolResult,
		ToolCallID:       id,
		ToolName:         "image_generation",
		Result:           map[string]any{"result": evt.PartialImageB64},
		ProviderExecuted: true,
		Preliminary:      true,
	}}
}

func (n *Normalizer) onAnnotation(evt *wire.StreamEvent) []api.StreamEvent {
	if evt.Annotation == nil {
		return nil
	}
	source := response.SourceFromAnnotation(evt.Annotation)
	return []api.StreamEvent{{Type: api.EventSource, Source: &source}}
}

func (n *Normalizer) onSummaryPartAdded(evt *wire.StreamEvent) []api.StreamEvent {
	rs := n.reasoning[evt.OutputIndex]
	if rs == nil {
		n.anomalies++
		return nil
	}
	// Segment 0's start was already emitted at item-add time.
	if evt.SummaryIndex == 0 {
		return nil
	}
	rs.openSegments = append(rs.openSegments, evt.SummaryIndex)
	return []api.StreamEvent{{Type: api.EventReasoningStart, ID: segmentID(rs.canonicalID, evt.SummaryIndex)}}
}

func (n *Normalizer) onSummaryTextDelta(evt *wire.StreamEvent) []api.StreamEvent {
	rs := n.reasoning[evt.OutputIndex]
	if rs == nil {
		n.anomalies++
		return nil
	}
	var events []api.StreamEvent
	if !containsInt(rs.openSegments, evt.SummaryIndex) {
		n.anomalies++
		rs.openSegments = append(rs.openSegments, evt.SummaryIndex)
		events = append(events, api.StreamEvent{
			Type: api.EventReasoningStart, ID: segmentID(rs.canonicalID, evt.SummaryIndex)})
	}
	return append(events, api.StreamEvent{
		Type:  api.EventReasoningDelta,
		ID:    segmentID(rs.canonicalID, evt.SummaryIndex),
		Delta: evt.Delta,
	})
}

func (n *Normalizer) onCompletion(evt *wire.StreamEvent) {
	n.sawCompletion = true
	if evt.Response == nil {
		return
	}
	if evt.Response.IncompleteDetails != nil {
		n.incompleteReason = evt.Response.IncompleteDetails.Reason
	}
	n.usage = response.MapUsage(evt.Response.Usage)
	if evt.Response.ServiceTier != "" {
		n.serviceTier = evt.Response.ServiceTier
	}
}

func (n *Normalizer) onFailed(evt *wire.StreamEvent) []api.StreamEvent {
	n.errored = true
	message := "response.failed"
	if evt.Response != nil && evt.Response.Error != nil && evt.Response.Error.Message != "" {
		message = evt.Response.Error.Message
	}
	return []api.StreamEvent{{
		Type:         api.EventError,
		ErrorMessage: message,
		Err:          fmt.Errorf("upstream failure: %s", message),
	}}
}

func reasoningMetadata(rs *reasoningState) map[string]any {
	meta := map[string]any{"item_id": rs.canonicalID}
	if rs.encrypted != "" {
		meta["encrypted_content"] = rs.encrypted
	}
	return map[string]any{"openai": meta}
}

func textID(itemID string) string {
	if itemID != "" {
		return itemID
	}
	return "msg_" + uuid.NewString()
}

func segmentID(itemID string, segment int) string {
	return fmt.Sprintf("%s:%d", itemID, segment)
}

func jsonEscapeFragment(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

func mustJSONString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func countOpenSegments(reasoning map[int]*reasoningState) int {
	total := 0
	for _, rs := range reasoning {
		total += len(rs.openSegments)
	}
	return total
}
