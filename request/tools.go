package request

import (
	"fmt"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/wire"
)

// ConvertTools translates canonical tool declarations and the tool-choice
// policy to vendor shape. Unsupported declarations degrade to warnings.
func ConvertTools(tools []api.Tool, choice *api.ToolChoice, strictSchemas *bool) ([]wire.Tool, any, []api.Warning) {
	var out []wire.Tool
	var warnings []api.Warning

	for _, t := range tools {
		switch t.Type {
		case api.ToolFunction:
			wt := wire.Tool{
				Type:        "function",
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
				Strict:      t.Strict,
			}
			if wt.Strict == nil {
				wt.Strict = strictSchemas
			}
			out = append(out, wt)

		case api.ToolWebSearch:
			out = append(out, wire.Tool{
				Type:              "web_search",
				SearchContextSize: t.SearchContextSize,
			})

		case api.ToolCodeInterpreter:
			container := any(map[string]string{"type": "auto"})
			if t.Container != "" {
				container = t.Container
			}
			out = append(out, wire.Tool{Type: "code_interpreter", Container: container})

		case api.ToolFileSearch:
			out = append(out, wire.Tool{Type: "file_search", VectorStoreIDs: t.VectorStoreIDs})

		case api.ToolImageGeneration:
			out = append(out, wire.Tool{Type: "image_generation"})

		case api.ToolComputerUse:
			out = append(out, wire.Tool{
				Type:          "computer_use_preview",
				DisplayWidth:  t.DisplayWidth,
				DisplayHeight: t.DisplayHeight,
				Environment:   t.Environment,
			})

		case api.ToolLocalShell:
			out = append(out, wire.Tool{Type: "local_shell"})

		default:
			warnings = append(warnings, api.UnsupportedSetting(
				"tools", fmt.Sprintf("tool type %q is not supported", t.Type)))
		}
	}

	toolChoice, tcWarnings := convertToolChoice(choice, tools)
	warnings = append(warnings, tcWarnings...)

	return out, toolChoice, warnings
}

func convertToolChoice(choice *api.ToolChoice, tools []api.Tool) (any, []api.Warning) {
	if choice == nil {
		return nil, nil
	}
	switch choice.Mode {
	case api.ToolChoiceAuto, api.ToolChoiceNone, api.ToolChoiceRequired:
		return wire.ToolChoiceMode(choice.Mode), nil
	case api.ToolChoiceTool:
		for _, t := range tools {
			if t.Type == api.ToolFunction && t.Name == choice.ToolName {
				return wire.ToolChoiceFunction(choice.ToolName), nil
			}
			if t.Type != api.ToolFunction && t.Type == choice.ToolName {
				return wire.ToolChoiceProviderTool(t.Type), nil
			}
		}
		return wire.ToolChoiceMode("auto"), []api.Warning{api.UnsupportedSetting(
			"tool_choice",
			fmt.Sprintf("tool %q is not declared in tools; falling back to auto", choice.ToolName))}
	default:
		return wire.ToolChoiceMode("auto"), []api.Warning{api.UnsupportedSetting(
			"tool_choice",
			fmt.Sprintf("tool choice mode %q is not supported; falling back to auto", choice.Mode))}
	}
}

// HasToolType reports whether a canonical tool of the given type is declared.
func HasToolType(tools []api.Tool, toolType string) bool {
	for _, t := range tools {
		if t.Type == toolType {
			return true
		}
	}
	return false
}
