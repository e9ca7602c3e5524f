package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/n0madic/go-responses-adapter/api"
)

// runStream feeds a literal SSE stream through Reader and Normalizer and
// returns every canonical event including the start and flush events.
func runStream(t *testing.T, opts Options, sse string) []api.StreamEvent {
	t.Helper()

	n := NewNormalizer(opts)
	events := []api.StreamEvent{n.Start(nil)}

	r := NewReader(strings.NewReader(sse))
	for {
		data, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reader error: %v", err)
		}
		events = append(events, n.Process(data)...)
	}
	return append(events, n.Flush()...)
}

func eventTypes(events []api.StreamEvent) []api.EventType {
	out := make([]api.EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func requireTypes(t *testing.T, events []api.StreamEvent, want ...api.EventType) {
	t.Helper()
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("event count: got %d want %d\ngot: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %q want %q\nall: %v", i, got[i], want[i], got)
		}
	}
}

func TestNormalizerTextAndFunctionCall(t *testing.T) {
	sse := `data: {"type":"response.created","response":{"id":"resp_1","model":"gpt-5","created_at":1700000000}}

data: {"type":"response.output_item.added","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":"Hello"}

data: {"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":" world"}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {"type":"response.output_item.added","output_index":1,"item":{"type":"function_call","id":"fc_1","call_id":"call_1","name":"get_weather"}}

data: {"type":"response.function_call_arguments.delta","output_index":1,"delta":"{\"city\":"}

data: {"type":"response.function_call_arguments.delta","output_index":1,"delta":"\"Paris\"}"}

data: {"type":"response.output_item.done","output_index":1,"item":{"type":"function_call","id":"fc_1","call_id":"call_1","name":"get_weather","arguments":"{\"city\":\"Paris\"}"}}

data: {"type":"response.completed","response":{"id":"resp_1","usage":{"input_tokens":10,"output_tokens":5,"total_tokens":15}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventResponseMetadata,
		api.EventTextStart,
		api.EventTextDelta,
		api.EventTextDelta,
		api.EventTextEnd,
		api.EventToolInputStart,
		api.EventToolInputDelta,
		api.EventToolInputDelta,
		api.EventToolInputEnd,
		api.EventToolCall,
		api.EventFinish,
	)

	meta := events[1]
	if meta.ResponseID != "resp_1" || meta.ModelID != "gpt-5" {
		t.Errorf("metadata: got %q/%q", meta.ResponseID, meta.ModelID)
	}

	if events[3].ID != "msg_1" || events[3].Delta != "Hello" {
		t.Errorf("first text delta: got %q/%q", events[3].ID, events[3].Delta)
	}

	call := events[10]
	if call.ToolCallID != "call_1" {
		t.Errorf("tool call id: got %q want call_1", call.ToolCallID)
	}
	if call.ToolName != "get_weather" {
		t.Errorf("tool name: got %q", call.ToolName)
	}
	if call.Input != `{"city":"Paris"}` {
		t.Errorf("tool input: got %q", call.Input)
	}
	if call.ProviderExecuted {
		t.Error("function calls are client-executed")
	}

	fin := events[len(events)-1]
	if fin.FinishReason != api.FinishToolCalls {
		t.Errorf("finish reason: got %q want tool-calls", fin.FinishReason)
	}
	if fin.Usage.InputTokens != 10 || fin.Usage.OutputTokens != 5 || fin.Usage.TotalTokens != 15 {
		t.Errorf("usage: got %+v", fin.Usage)
	}
	if n := countAnomalies(t, sse); n != 0 {
		t.Errorf("anomalies: got %d want 0", n)
	}
}

func TestNormalizerReasoningSegments(t *testing.T) {
	sse := `data: {"type":"response.created","response":{"id":"resp_2","model":"o3","created_at":1700000000}}

data: {"type":"response.output_item.added","output_index":0,"item":{"type":"reasoning","id":"rs_1"}}

data: {"type":"response.reasoning_summary_part.added","output_index":0,"summary_index":0}

data: {"type":"response.reasoning_summary_text.delta","output_index":0,"summary_index":0,"delta":"thinking"}

data: {"type":"response.reasoning_summary_part.added","output_index":0,"summary_index":1}

data: {"type":"response.reasoning_summary_text.delta","output_index":0,"summary_index":1,"delta":"more"}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"reasoning","id":"rs_1","encrypted_content":"enc_abc"}}

data: {"type":"response.completed","response":{"id":"resp_2","usage":{"input_tokens":3,"output_tokens":2,"total_tokens":5}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventResponseMetadata,
		api.EventReasoningStart, // segment 0, opened by the item itself
		api.EventReasoningDelta,
		api.EventReasoningStart, // segment 1
		api.EventReasoningDelta,
		api.EventReasoningEnd,
		api.EventReasoningEnd,
		api.EventFinish,
	)

	if events[2].ID != "rs_1:0" {
		t.Errorf("segment 0 id: got %q want rs_1:0", events[2].ID)
	}
	if events[4].ID != "rs_1:1" {
		t.Errorf("segment 1 id: got %q want rs_1:1", events[4].ID)
	}
	if events[3].Delta != "thinking" || events[5].Delta != "more" {
		t.Errorf("deltas: got %q/%q", events[3].Delta, events[5].Delta)
	}

	// Every segment end must carry the encrypted content from item done.
	for _, e := range events[6:8] {
		openaiMeta, _ := e.ProviderMetadata["openai"].(map[string]any)
		if openaiMeta == nil || openaiMeta["encrypted_content"] != "enc_abc" {
			t.Errorf("reasoning end metadata: got %+v", e.ProviderMetadata)
		}
	}

	if fin := events[len(events)-1]; fin.FinishReason != api.FinishStop {
		t.Errorf("finish reason: got %q want stop", fin.FinishReason)
	}
}

func TestNormalizerZeroSummaryReasoning(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"reasoning","id":"rs_2"}}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"reasoning","id":"rs_2"}}

data: {"type":"response.completed","response":{"id":"resp_3","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventReasoningStart,
		api.EventReasoningEnd,
		api.EventFinish,
	)
	if events[1].ID != "rs_2:0" || events[2].ID != "rs_2:0" {
		t.Errorf("segment ids: got %q/%q", events[1].ID, events[2].ID)
	}
}

func TestNormalizerCodeInterpreter(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"code_interpreter_call","id":"ci_1","container_id":"cntr_1"}}

data: {"type":"response.code_interpreter_call_code.delta","output_index":0,"delta":"print("}

data: {"type":"response.code_interpreter_call_code.delta","output_index":0,"delta":"\"hi\")"}

data: {"type":"response.code_interpreter_call_code.done","output_index":0,"code":"print(\"hi\")"}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"code_interpreter_call","id":"ci_1","container_id":"cntr_1","code":"print(\"hi\")","outputs":[{"type":"logs","logs":"hi"}]}}

data: {"type":"response.completed","response":{"id":"resp_4","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventToolInputStart,
		api.EventToolInputDelta, // opening fragment
		api.EventToolInputDelta,
		api.EventToolInputDelta,
		api.EventToolInputDelta, // closing fragment
		api.EventToolInputEnd,
		api.EventToolCall,
		api.EventToolResult,
		api.EventFinish,
	)

	var assembled strings.Builder
	for _, e := range events {
		if e.Type == api.EventToolInputDelta {
			assembled.WriteString(e.Delta)
		}
	}
	if got, want := assembled.String(), `{"containerId":"cntr_1","code":"print(\"hi\")"}`; got != want {
		t.Errorf("assembled input:\ngot  %s\nwant %s", got, want)
	}

	call := events[7]
	if call.ToolCallID != "ci_1" || call.ToolName != "code_interpreter" {
		t.Errorf("tool call: got %q/%q", call.ToolCallID, call.ToolName)
	}
	if !call.ProviderExecuted {
		t.Error("code interpreter calls are provider-executed")
	}
	if !strings.Contains(call.Input, `"code":"print(\"hi\")"`) {
		t.Errorf("final input: got %s", call.Input)
	}
}

func TestNormalizerImmediateTools(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"file_search_call","id":"fs_1","queries":["golang"]}}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"file_search_call","id":"fs_1","queries":["golang"],"results":[{"file_id":"f1"}]}}

data: {"type":"response.completed","response":{"id":"resp_5","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	// One terminal call and result at item-add time; item done adds nothing.
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventToolCall,
		api.EventToolResult,
		api.EventFinish,
	)
	if events[1].ToolName != "file_search" {
		t.Errorf("tool name: got %q", events[1].ToolName)
	}
}

func TestNormalizerPartialImage(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"image_generation_call","id":"ig_1"}}

data: {"type":"response.image_generation_call.partial_image","output_index":0,"item_id":"ig_1","partial_image_index":0,"partial_image_b64":"AAAA"}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"image_generation_call","id":"ig_1","result":"BBBB"}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventToolCall,
		api.EventToolResult, // immediate result (empty at add time)
		api.EventToolResult, // partial image
		api.EventFinish,
	)

	partial := events[3]
	if !partial.Preliminary {
		t.Error("partial image results must be preliminary")
	}
	result, _ := partial.Result.(map[string]any)
	if result == nil || result["result"] != "AAAA" {
		t.Errorf("partial result: got %+v", partial.Result)
	}

	// No completion event observed.
	if fin := events[len(events)-1]; fin.FinishReason != api.FinishUnknown {
		t.Errorf("finish reason: got %q want unknown", fin.FinishReason)
	}
}

func TestNormalizerAnnotations(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":"see docs"}

data: {"type":"response.output_text.annotation.added","output_index":0,"item_id":"msg_1","annotation":{"type":"url_citation","url":"https://example.com","title":"Example"}}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {"type":"response.completed","response":{"id":"resp_6","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventTextStart,
		api.EventTextDelta,
		api.EventSource,
		api.EventTextEnd,
		api.EventFinish,
	)

	src := events[3].Source
	if src == nil || src.SourceType != "url" || src.URL != "https://example.com" || src.Title != "Example" {
		t.Errorf("source: got %+v", src)
	}
	if src != nil && src.ID == "" {
		t.Error("source id must be generated")
	}
}

func TestNormalizerTextDeltaWithoutItemAdded(t *testing.T) {
	sse := `data: {"type":"response.output_text.delta","item_id":"msg_x","output_index":0,"delta":"hi"}

data: {"type":"response.completed","response":{"id":"resp_7","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventTextStart,
		api.EventTextDelta,
		api.EventTextEnd, // synthesized by flush
		api.EventFinish,
	)
	if events[1].ID != "msg_x" {
		t.Errorf("synthesized text id: got %q", events[1].ID)
	}
}

func TestNormalizerMalformedEvent(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {not json

data: {"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":"still here"}

data: {"type":"response.completed","response":{"id":"resp_8","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventTextStart,
		api.EventError,
		api.EventTextDelta,
		api.EventTextEnd,
		api.EventFinish,
	)

	// A malformed chunk degrades the finish reason but not the stream.
	if fin := events[len(events)-1]; fin.FinishReason != api.FinishError {
		t.Errorf("finish reason: got %q want error", fin.FinishReason)
	}
}

func TestNormalizerUpstreamErrorEvent(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"message","id":"msg_1"}}

data: {"type":"error","code":"rate_limited","message":"slow down"}

data: {"type":"response.output_text.delta","item_id":"msg_1","output_index":0,"delta":"ok"}

data: {"type":"response.completed","response":{"id":"resp_9","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventTextStart,
		api.EventError,
		api.EventTextDelta,
		api.EventTextEnd,
		api.EventFinish,
	)

	if events[2].ErrorMessage != "slow down" {
		t.Errorf("error message: got %q", events[2].ErrorMessage)
	}
	// Explicit error events do not force an error finish reason.
	if fin := events[len(events)-1]; fin.FinishReason != api.FinishStop {
		t.Errorf("finish reason: got %q want stop", fin.FinishReason)
	}
}

func TestNormalizerFailedResponse(t *testing.T) {
	sse := `data: {"type":"response.failed","response":{"id":"resp_10","error":{"message":"something went wrong"}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventError,
		api.EventFinish,
	)
	if events[1].ErrorMessage != "something went wrong" {
		t.Errorf("error message: got %q", events[1].ErrorMessage)
	}
	if fin := events[len(events)-1]; fin.FinishReason != api.FinishError {
		t.Errorf("finish reason: got %q want error", fin.FinishReason)
	}
}

func TestNormalizerIncompleteMaxTokens(t *testing.T) {
	sse := `data: {"type":"response.incomplete","response":{"id":"resp_11","incomplete_details":{"reason":"max_output_tokens"},"usage":{"input_tokens":1,"output_tokens":9,"total_tokens":10}}}

data: [DONE]

`
	events := runStream(t, Options{}, sse)
	if fin := events[len(events)-1]; fin.FinishReason != api.FinishLength {
		t.Errorf("finish reason: got %q want length", fin.FinishReason)
	}
}

func TestNormalizerRawPassthrough(t *testing.T) {
	sse := `data: {"type":"response.queued"}

data: {"type":"response.completed","response":{"id":"resp_12","usage":{"input_tokens":1,"output_tokens":1,"total_tokens":2}}}

data: [DONE]

`
	events := runStream(t, Options{IncludeRaw: true}, sse)
	requireTypes(t, events,
		api.EventStreamStart,
		api.EventRaw, // unknown tag still forwarded raw
		api.EventRaw,
		api.EventFinish,
	)
	if !strings.Contains(string(events[1].Raw), "response.queued") {
		t.Errorf("raw payload: got %s", events[1].Raw)
	}
}

func TestNormalizerFlushIdempotent(t *testing.T) {
	n := NewNormalizer(Options{})
	first := n.Flush()
	if len(first) != 1 || first[0].Type != api.EventFinish {
		t.Fatalf("first flush: got %v", eventTypes(first))
	}
	if second := n.Flush(); len(second) != 0 {
		t.Fatalf("second flush emitted %d events", len(second))
	}
}

func TestNormalizerTruncatedStreamAnomalies(t *testing.T) {
	sse := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"function_call","id":"fc_1","call_id":"call_1","name":"f"}}

data: {"type":"response.function_call_arguments.delta","output_index":0,"delta":"{"}

data: [DONE]

`
	n := NewNormalizer(Options{})
	r := NewReader(strings.NewReader(sse))
	for {
		data, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reader error: %v", err)
		}
		n.Process(data)
	}
	flushed := n.Flush()
	if flushed[len(flushed)-1].FinishReason != api.FinishUnknown {
		t.Errorf("finish reason: got %q want unknown", flushed[len(flushed)-1].FinishReason)
	}
	if n.Anomalies() == 0 {
		t.Error("open tool call at stream end must count as an anomaly")
	}
}

func countAnomalies(t *testing.T, sse string) int {
	t.Helper()
	n := NewNormalizer(Options{})
	r := NewReader(strings.NewReader(sse))
	for {
		data, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reader error: %v", err)
		}
		n.Process(data)
	}
	n.Flush()
	return n.Anomalies()
}
