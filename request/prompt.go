package request

import (
	"fmt"
	"strings"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/models"
	"github.com/n0madic/go-responses-adapter/wire"
)

// ConvertPrompt translates the canonical prompt into Responses API input
// items, honoring the model's system-message mode.
func ConvertPrompt(prompt []api.Message, mode models.SystemMessageMode) ([]wire.InputItem, []api.Warning, error) {
	var items []wire.InputItem
	var warnings []api.Warning
	droppedSystem := false

	for _, msg := range prompt {
		switch msg.Role {
		case api.RoleSystem:
			switch mode {
			case models.SystemMessageRemove:
				if !droppedSystem {
					warnings = append(warnings, api.UnsupportedSetting(
						"system-messages", "system messages are removed for this model"))
					droppedSystem = true
				}
			case models.SystemMessageDeveloper:
				items = append(items, systemItem("developer", msg))
			default:
				items = append(items, systemItem("system", msg))
			}

		case api.RoleUser:
			item, err := userItem(msg)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, item)

		case api.RoleAssistant:
			assistantItems := assistantItems(msg)
			items = append(items, assistantItems...)

		case api.RoleTool:
			for _, part := range msg.Parts {
				if part.Type != api.PartToolResult {
					continue
				}
				items = append(items, wire.InputItem{
					Type:   "function_call_output",
					CallID: part.ToolCallID,
					Output: part.Output,
				})
			}

		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	return items, warnings, nil
}

func systemItem(role string, msg api.Message) wire.InputItem {
	var texts []string
	for _, part := range msg.Parts {
		if part.Type == api.PartText && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return wire.InputItem{
		Type: "message",
		Role: role,
		Content: []wire.InputContent{
			{Type: "input_text", Text: strings.Join(texts, "\n")},
		},
	}
}

func userItem(msg api.Message) (wire.InputItem, error) {
	content := make([]wire.InputContent, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch part.Type {
		case api.PartText:
			content = append(content, wire.InputContent{Type: "input_text", Text: part.Text})
		case api.PartFile:
			fc, err := fileContent(part)
			if err != nil {
				return wire.InputItem{}, err
			}
			content = append(content, fc)
		default:
			return wire.InputItem{}, fmt.Errorf("unsupported user part type %q", part.Type)
		}
	}
	return wire.InputItem{Type: "message", Role: "user", Content: content}, nil
}

func fileContent(part api.MessagePart) (wire.InputContent, error) {
	switch {
	case strings.HasPrefix(part.MediaType, "image/"):
		return wire.InputContent{Type: "input_image", ImageURL: imageURL(part)}, nil
	case part.MediaType == "application/pdf":
		filename := part.Filename
		if filename == "" {
			filename = "document.pdf"
		}
		return wire.InputContent{
			Type:     "input_file",
			Filename: filename,
			FileData: dataURI(part),
		}, nil
	default:
		return wire.InputContent{}, fmt.Errorf("unsupported file media type %q", part.MediaType)
	}
}

func imageURL(part api.MessagePart) string {
	if strings.HasPrefix(part.Data, "http://") || strings.HasPrefix(part.Data, "https://") ||
		strings.HasPrefix(part.Data, "data:") {
		return part.Data
	}
	return dataURI(part)
}

func dataURI(part api.MessagePart) string {
	if strings.HasPrefix(part.Data, "data:") {
		return part.Data
	}
	return "data:" + part.MediaType + ";base64," + part.Data
}

// assistantItems splits an assistant turn into a message item (text) and one
// function_call item per client tool call. Provider-executed calls are not
// replayed: the vendor reconstructs them from previous_response_id.
func assistantItems(msg api.Message) []wire.InputItem {
	var items []wire.InputItem
	var content []wire.InputContent

	for _, part := range msg.Parts {
		switch part.Type {
		case api.PartText:
			content = append(content, wire.InputContent{Type: "output_text", Text: part.Text})
		case api.PartToolCall:
			items = append(items, wire.InputItem{
				Type:      "function_call",
				CallID:    part.ToolCallID,
				Name:      part.ToolName,
				Arguments: part.Input,
			})
		}
	}

	if len(content) > 0 {
		items = append([]wire.InputItem{{
			Type:    "message",
			Role:    "assistant",
			Content: content,
		}}, items...)
	}
	return items
}
