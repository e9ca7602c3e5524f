// Package request builds a vendor-shaped Responses API request body from
// canonical call options while applying the per-model capability matrix.
// Unsupported settings are dropped with warnings; invalid provider options
// fail the call.
package request

import (
	"fmt"
	"strings"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/models"
	"github.com/n0madic/go-responses-adapter/wire"
)

// Include values derived from requested features.
const (
	IncludeLogprobs           = "message.output_text.logprobs"
	IncludeWebSearchSources   = "web_search_call.action.sources"
	IncludeCodeOutputs        = "code_interpreter_call.outputs"
	IncludeReasoningEncrypted = "reasoning.encrypted_content"
)

// Build assembles the vendor request body plus advisory warnings.
// It never mutates opts.
func Build(modelID string, opts api.CallOptions, caps models.Capabilities) (*wire.Request, []api.Warning, error) {
	var warnings []api.Warning

	// Sampling parameters the Responses wire format has no field for.
	if opts.TopK != nil {
		warnings = append(warnings, api.UnsupportedSetting("top_k", ""))
	}
	if opts.Seed != nil {
		warnings = append(warnings, api.UnsupportedSetting("seed", ""))
	}
	if opts.PresencePenalty != nil {
		warnings = append(warnings, api.UnsupportedSetting("presence_penalty", ""))
	}
	if opts.FrequencyPenalty != nil {
		warnings = append(warnings, api.UnsupportedSetting("frequency_penalty", ""))
	}
	if len(opts.StopSequences) > 0 {
		warnings = append(warnings, api.UnsupportedSetting("stop_sequences", ""))
	}

	temperature := opts.Temperature
	if temperature != nil && caps.IsReasoningModel {
		warnings = append(warnings, api.UnsupportedSetting("temperature",
			"reasoning models do not support temperature"))
		temperature = nil
	}

	po, err := ParseProviderOptions(opts.ProviderOptions)
	if err != nil {
		return nil, nil, err
	}

	input, promptWarnings, err := ConvertPrompt(opts.Prompt, caps.SystemMessageMode)
	if err != nil {
		return nil, nil, fmt.Errorf("convert prompt: %w", err)
	}
	warnings = append(warnings, promptWarnings...)

	req := &wire.Request{
		Model:              modelID,
		Input:              input,
		Instructions:       po.Instructions,
		MaxOutputTokens:    opts.MaxOutputTokens,
		Temperature:        temperature,
		TopP:               opts.TopP,
		Metadata:           po.Metadata,
		ParallelToolCalls:  po.ParallelToolCalls,
		PreviousResponseID: po.PreviousResponseID,
		PromptCacheKey:     po.PromptCacheKey,
		Store:              po.Store,
		User:               po.User,
	}

	if po.logprobsRequested() && po.Logprobs.Count > 0 {
		req.TopLogprobs = po.Logprobs.Count
	}

	req.Include = deriveIncludes(po, opts.Tools)
	warnings = append(warnings, applyReasoning(req, po, caps)...)

	if caps.RequiredAutoTruncation {
		req.Truncation = "auto"
	}

	warnings = append(warnings, applyServiceTier(req, po, caps)...)
	warnings = append(warnings, applyStore(req, po, caps)...)
	applyResponseFormat(req, opts.ResponseFormat, po)

	tools, toolChoice, toolWarnings := ConvertTools(opts.Tools, opts.ToolChoice, po.StrictJSONSchema)
	req.Tools = tools
	req.ToolChoice = toolChoice
	warnings = append(warnings, toolWarnings...)

	return req, warnings, nil
}

// deriveIncludes merges caller-requested include values with the implicit
// inclusions derived from requested features, without duplicates.
func deriveIncludes(po *ProviderOptions, tools []api.Tool) []string {
	var merged []string
	seen := make(map[string]struct{})

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}

	for _, v := range po.Include {
		add(v)
	}
	if po.logprobsRequested() {
		add(IncludeLogprobs)
	}
	if HasToolType(tools, api.ToolWebSearch) {
		add(IncludeWebSearchSources)
	}
	if HasToolType(tools, api.ToolCodeInterpreter) {
		add(IncludeCodeOutputs)
	}
	return merged
}

func applyReasoning(req *wire.Request, po *ProviderOptions, caps models.Capabilities) []api.Warning {
	if po.ReasoningEffort == "" && po.ReasoningSummary == "" {
		return nil
	}
	if !caps.IsReasoningModel {
		var warnings []api.Warning
		if po.ReasoningEffort != "" {
			warnings = append(warnings, api.UnsupportedSetting(
				"reasoning_effort", "the model does not support reasoning"))
		}
		if po.ReasoningSummary != "" {
			warnings = append(warnings, api.UnsupportedSetting(
				"reasoning_summary", "the model does not support reasoning"))
		}
		return warnings
	}
	req.Reasoning = &wire.Reasoning{
		Effort:  po.ReasoningEffort,
		Summary: po.ReasoningSummary,
	}
	return nil
}

func applyServiceTier(req *wire.Request, po *ProviderOptions, caps models.Capabilities) []api.Warning {
	tier := po.ServiceTier
	if tier == "" {
		return nil
	}
	if tier == "flex" && !caps.SupportsFlexTier {
		return []api.Warning{api.UnsupportedSetting("service_tier",
			"flex processing is only available for "+models.FlexFamilies()+" models")}
	}
	if tier == "priority" && !caps.SupportsPriorityTier {
		return []api.Warning{api.UnsupportedSetting("service_tier",
			"priority processing is only available for "+models.PriorityFamilies()+" models")}
	}
	req.ServiceTier = tier
	return nil
}

// applyStore forces store off for codex-backend models, which reject stored
// responses.
func applyStore(req *wire.Request, po *ProviderOptions, caps models.Capabilities) []api.Warning {
	if !caps.ForcesStoreDisabled {
		return nil
	}
	disabled := false
	req.Store = &disabled
	if po.Store != nil && *po.Store {
		return []api.Warning{api.UnsupportedSetting("store",
			"the model does not support stored responses; store was disabled")}
	}
	return nil
}

func applyResponseFormat(req *wire.Request, rf *api.ResponseFormat, po *ProviderOptions) {
	if rf == nil && po.TextVerbosity == "" {
		return
	}
	text := &wire.TextConfig{Verbosity: po.TextVerbosity}
	if rf != nil && rf.Type == api.ResponseFormatJSON {
		if rf.Schema != nil {
			name := rf.Name
			if name == "" {
				name = "response"
			}
			text.Format = &wire.TextFormat{
				Type:        "json_schema",
				Name:        name,
				Description: rf.Description,
				Schema:      rf.Schema,
				Strict:      po.StrictJSONSchema,
			}
		} else {
			text.Format = &wire.TextFormat{Type: "json_object"}
		}
	}
	req.Text = text
}
