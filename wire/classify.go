package wire

import "encoding/json"

// The chunk classifier: pure tag-based routing shared by the non-stream
// mapper and the stream normalizer. Safe for concurrent use.

// IsIncrementalToolItem reports whether an item kind streams its input
// incrementally (open at item.added, close at item.done).
func IsIncrementalToolItem(itemType string) bool {
	switch itemType {
	case ItemFunctionCall, ItemWebSearchCall, ItemComputerCall, ItemCodeInterpreterCall:
		return true
	}
	return false
}

// IsImmediateToolItem reports whether an item kind is fire-and-forget: the
// terminal call and result are emitted as soon as the item is added.
func IsImmediateToolItem(itemType string) bool {
	return itemType == ItemFileSearchCall || itemType == ItemImageGenerationCall
}

// IsToolCallItem reports whether the item kind produces a tool call at all.
func IsToolCallItem(itemType string) bool {
	return IsIncrementalToolItem(itemType) || IsImmediateToolItem(itemType) ||
		itemType == ItemLocalShellCall
}

// IsProviderExecuted reports whether the vendor runs the tool itself.
// function_call is the only client-executed kind.
func IsProviderExecuted(itemType string) bool {
	return IsToolCallItem(itemType) && itemType != ItemFunctionCall
}

// HasSynchronousResult reports whether the vendor delivers the tool result in
// the same turn. local_shell_call does not: its output arrives as a later
// input item.
func HasSynchronousResult(itemType string) bool {
	switch itemType {
	case ItemWebSearchCall, ItemComputerCall, ItemFileSearchCall,
		ItemCodeInterpreterCall, ItemImageGenerationCall:
		return true
	}
	return false
}

// ToolName returns the canonical tool name for an item. Client function calls
// use the declared function name; provider tools use a fixed name per kind.
func ToolName(item *Item) string {
	switch item.Type {
	case ItemFunctionCall:
		return item.Name
	case ItemWebSearchCall:
		return "web_search"
	case ItemComputerCall:
		return "computer_use"
	case ItemFileSearchCall:
		return "file_search"
	case ItemCodeInterpreterCall:
		return "code_interpreter"
	case ItemImageGenerationCall:
		return "image_generation"
	case ItemLocalShellCall:
		return "local_shell"
	}
	return item.Type
}

// CanonicalToolCallID picks the stable id for a tool call. Kinds that carry a
// call_id use it (that is the id the caller must echo back in tool results);
// everything else uses the item id.
func CanonicalToolCallID(item *Item) string {
	switch item.Type {
	case ItemFunctionCall, ItemLocalShellCall:
		if item.CallID != "" {
			return item.CallID
		}
	}
	return item.ID
}

// ToolCallInput builds the JSON-encoded canonical input for a completed tool
// call item.
func ToolCallInput(item *Item) string {
	switch item.Type {
	case ItemFunctionCall:
		return item.Arguments
	case ItemCodeInterpreterCall:
		return mustJSON(map[string]any{
			"code":        item.Code,
			"containerId": item.ContainerID,
		})
	case ItemFileSearchCall:
		if len(item.Queries) == 0 {
			return "{}"
		}
		return mustJSON(map[string]any{"queries": item.Queries})
	case ItemWebSearchCall, ItemComputerCall, ItemLocalShellCall:
		if len(item.Action) > 0 {
			return string(item.Action)
		}
	}
	return "{}"
}

// ToolCallResult builds the canonical result payload for item kinds with a
// synchronous result. Returns false for everything else.
func ToolCallResult(item *Item) (any, bool) {
	switch item.Type {
	case ItemWebSearchCall, ItemComputerCall:
		return map[string]any{"status": item.Status}, true
	case ItemFileSearchCall:
		res := map[string]any{"queries": item.Queries}
		if len(item.Results) > 0 {
			res["results"] = json.RawMessage(item.Results)
		}
		return res, true
	case ItemCodeInterpreterCall:
		res := map[string]any{}
		if len(item.Outputs) > 0 {
			res["outputs"] = json.RawMessage(item.Outputs)
		}
		return res, true
	case ItemImageGenerationCall:
		return map[string]any{"result": item.Result}, true
	}
	return nil, false
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
