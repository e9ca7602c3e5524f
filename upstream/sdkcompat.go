package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/n0madic/go-responses-adapter/wire"
)

// SDKClient is an alternate non-stream transport built on the official SDK.
// Function and web-search tools map onto SDK types; other hosted tools are
// not representable here and are skipped, so calls using them should go
// through Client instead.
type SDKClient struct {
	client openai.Client
}

// NewSDKClient creates an SDK-backed client. baseURL may be empty for the
// production endpoint.
func NewSDKClient(apiKey, baseURL string) *SDKClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &SDKClient{client: openai.NewClient(opts...)}
}

// Create sends a non-stream request through the SDK and returns the parsed
// response document.
func (c *SDKClient) Create(ctx context.Context, req *wire.Request) (*wire.Document, error) {
	res, err := c.client.Responses.New(ctx, requestToSDK(req))
	if err != nil {
		return nil, fmt.Errorf("upstream: sdk request failed: %w", err)
	}
	var doc wire.Document
	if err := json.Unmarshal([]byte(res.RawJSON()), &doc); err != nil {
		return nil, fmt.Errorf("upstream: decode sdk response: %w", err)
	}
	return &doc, nil
}

func requestToSDK(req *wire.Request) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model:      shared.ResponsesModel(req.Model),
		Input:      inputItemsToSDK(req.Input),
		Tools:      toolsToSDK(req.Tools),
		ToolChoice: toolChoiceToSDK(req.ToolChoice),
		Include:    includesToSDK(req.Include),
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.MaxOutputTokens != nil {
		params.MaxOutputTokens = openai.Int(int64(*req.MaxOutputTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.Store != nil {
		params.Store = openai.Bool(*req.Store)
	}
	if req.ParallelToolCalls != nil {
		params.ParallelToolCalls = openai.Bool(*req.ParallelToolCalls)
	}
	if req.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(req.PreviousResponseID)
	}
	if req.User != "" {
		params.User = openai.String(req.User)
	}
	if req.Truncation != "" {
		params.Truncation = responses.ResponseNewParamsTruncation(req.Truncation)
	}
	if req.ServiceTier != "" {
		params.ServiceTier = responses.ResponseNewParamsServiceTier(req.ServiceTier)
	}
	if req.Reasoning != nil {
		params.Reasoning = reasoningToSDK(req.Reasoning)
	}
	return params
}

func inputItemsToSDK(items []wire.InputItem) responses.ResponseNewParamsInputUnion {
	if len(items) == 0 {
		return responses.ResponseNewParamsInputUnion{}
	}
	sdkItems := make(responses.ResponseInputParam, 0, len(items))
	for _, item := range items {
		if sdkItem, ok := inputItemToSDK(item); ok {
			sdkItems = append(sdkItems, sdkItem)
		}
	}
	return responses.ResponseNewParamsInputUnion{OfInputItemList: sdkItems}
}

func inputItemToSDK(item wire.InputItem) (responses.ResponseInputItemUnionParam, bool) {
	switch item.Type {
	case "message":
		if item.Role == "assistant" {
			return assistantMessageToSDK(item)
		}
		content := contentToSDK(item.Content)
		if len(content) == 0 {
			return responses.ResponseInputItemUnionParam{}, false
		}
		return responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRole(item.Role)), true

	case "function_call":
		if item.CallID == "" || item.Name == "" {
			return responses.ResponseInputItemUnionParam{}, false
		}
		return responses.ResponseInputItemParamOfFunctionCall(item.Arguments, item.CallID, item.Name), true

	case "function_call_output":
		if item.CallID == "" {
			return responses.ResponseInputItemUnionParam{}, false
		}
		return responses.ResponseInputItemParamOfFunctionCallOutput(item.CallID, item.Output), true

	default:
		return responses.ResponseInputItemUnionParam{}, false
	}
}

// assistantMessageToSDK converts an assistant message to the SDK output
// message type. The vendor requires assistant turns to carry output_text
// content, not input_text.
func assistantMessageToSDK(item wire.InputItem) (responses.ResponseInputItemUnionParam, bool) {
	var content []responses.ResponseOutputMessageContentUnionParam
	for _, c := range item.Content {
		if c.Type == "output_text" || c.Type == "input_text" {
			if c.Text != "" {
				content = append(content, responses.ResponseOutputMessageContentUnionParam{
					OfOutputText: &responses.ResponseOutputTextParam{Text: c.Text},
				})
			}
		}
	}
	if len(content) == 0 {
		return responses.ResponseInputItemUnionParam{}, false
	}
	return responses.ResponseInputItemParamOfOutputMessage(content, "", responses.ResponseOutputMessageStatusCompleted), true
}

func contentToSDK(content []wire.InputContent) responses.ResponseInputMessageContentListParam {
	if len(content) == 0 {
		return nil
	}
	out := make(responses.ResponseInputMessageContentListParam, 0, len(content))
	for _, c := range content {
		switch c.Type {
		case "input_text", "output_text":
			if c.Text != "" {
				out = append(out, responses.ResponseInputContentParamOfInputText(c.Text))
			}
		case "input_image":
			if c.ImageURL != "" {
				out = append(out, responses.ResponseInputContentUnionParam{
					OfInputImage: &responses.ResponseInputImageParam{
						ImageURL: openai.String(c.ImageURL),
					},
				})
			}
		case "input_file":
			if c.FileData != "" {
				file := responses.ResponseInputFileParam{
					FileData: openai.String(c.FileData),
				}
				if c.Filename != "" {
					file.Filename = openai.String(c.Filename)
				}
				out = append(out, responses.ResponseInputContentUnionParam{OfInputFile: &file})
			}
		}
	}
	return out
}

func toolsToSDK(tools []wire.Tool) []responses.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		if sdkTool, ok := toolToSDK(t); ok {
			out = append(out, sdkTool)
		}
	}
	return out
}

func toolToSDK(tool wire.Tool) (responses.ToolUnionParam, bool) {
	switch tool.Type {
	case "function":
		params := tool.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		strict := false
		if tool.Strict != nil {
			strict = *tool.Strict
		}
		ft := responses.FunctionToolParam{
			Name:       tool.Name,
			Parameters: params,
			Strict:     openai.Bool(strict),
		}
		if tool.Description != "" {
			ft.Description = openai.String(tool.Description)
		}
		return responses.ToolUnionParam{OfFunction: &ft}, true

	case "web_search":
		return responses.ToolParamOfWebSearch(responses.WebSearchToolTypeWebSearch), true

	default:
		return responses.ToolUnionParam{}, false
	}
}

func reasoningToSDK(r *wire.Reasoning) shared.ReasoningParam {
	sp := shared.ReasoningParam{
		Effort: shared.ReasoningEffort(r.Effort),
	}
	if r.Summary != "" {
		sp.Summary = shared.ReasoningSummary(r.Summary)
	}
	return sp
}

func toolChoiceToSDK(choice any) responses.ResponseNewParamsToolChoiceUnion {
	auto := responses.ResponseNewParamsToolChoiceUnion{
		OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsAuto),
	}

	switch tc := choice.(type) {
	case nil:
		return auto
	case string:
		switch tc {
		case "none":
			return responses.ResponseNewParamsToolChoiceUnion{
				OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsNone),
			}
		case "required":
			return responses.ResponseNewParamsToolChoiceUnion{
				OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsRequired),
			}
		default:
			return auto
		}
	default:
		// Forced-tool objects round-trip through JSON so the wire package
		// can keep its choice type unexported.
		raw, err := json.Marshal(choice)
		if err != nil {
			return auto
		}
		var forced struct {
			Type string `json:"type"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &forced); err != nil {
			return auto
		}
		if forced.Type == "function" && forced.Name != "" {
			return responses.ResponseNewParamsToolChoiceUnion{
				OfFunctionTool: &responses.ToolChoiceFunctionParam{Name: forced.Name},
			}
		}
		return auto
	}
}

func includesToSDK(includes []string) []responses.ResponseIncludable {
	if len(includes) == 0 {
		return nil
	}
	out := make([]responses.ResponseIncludable, len(includes))
	for i, inc := range includes {
		out[i] = responses.ResponseIncludable(inc)
	}
	return out
}
