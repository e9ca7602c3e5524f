// Package response maps one complete Responses API document into the ordered
// canonical content list. It is a pure single-pass transform over the output
// item list.
package response

import (
	"github.com/google/uuid"

	"github.com/n0madic/go-responses-adapter/api"
	"github.com/n0madic/go-responses-adapter/wire"
)

// Mapped is the result of mapping one vendor document.
type Mapped struct {
	Content []api.ContentPart
	// HasFunctionCall is set when a client-executed function call occurred;
	// it drives finish-reason derivation.
	HasFunctionCall bool
	// Logprobs are collected only when the caller requested them.
	Logprobs []wire.Logprob
}

// MapOutput converts the vendor output item list. Unknown item tags are
// skipped, not an error.
func MapOutput(output []wire.Item, collectLogprobs bool) *Mapped {
	m := &Mapped{}

	for i := range output {
		item := &output[i]
		switch item.Type {
		case wire.ItemReasoning:
			m.Content = append(m.Content, reasoningParts(item)...)

		case wire.ItemMessage:
			for ci := range item.Content {
				content := &item.Content[ci]
				if content.Type != "output_text" {
					continue
				}
				if collectLogprobs && len(content.Logprobs) > 0 {
					m.Logprobs = append(m.Logprobs, content.Logprobs...)
				}
				m.Content = append(m.Content, api.ContentPart{
					Type: api.ContentText,
					Text: content.Text,
				})
				for ai := range content.Annotations {
					m.Content = append(m.Content, SourceFromAnnotation(&content.Annotations[ai]))
				}
			}

		case wire.ItemFunctionCall:
			m.HasFunctionCall = true
			m.Content = append(m.Content, api.ContentPart{
				Type:       api.ContentToolCall,
				ToolCallID: wire.CanonicalToolCallID(item),
				ToolName:   item.Name,
				Input:      item.Arguments,
			})

		default:
			if !wire.IsToolCallItem(item.Type) {
				continue // unknown item tag, forward compatibility
			}
			m.Content = append(m.Content, api.ContentPart{
				Type:             api.ContentToolCall,
				ToolCallID:       wire.CanonicalToolCallID(item),
				ToolName:         wire.ToolName(item),
				Input:            wire.ToolCallInput(item),
				ProviderExecuted: true,
			})
			if result, ok := wire.ToolCallResult(item); ok {
				m.Content = append(m.Content, api.ContentPart{
					Type:             api.ContentToolResult,
					ToolCallID:       wire.CanonicalToolCallID(item),
					ToolName:         wire.ToolName(item),
					Result:           result,
					ProviderExecuted: true,
				})
			}
		}
	}

	return m
}

// reasoningParts emits one Reasoning part per summary segment. A reasoning
// item with no summary still yields exactly one empty segment: vendors omit
// the summary for degenerate reasoning.
func reasoningParts(item *wire.Item) []api.ContentPart {
	summary := item.Summary
	if len(summary) == 0 {
		summary = []wire.SummaryPart{{Type: "summary_text", Text: ""}}
	}
	parts := make([]api.ContentPart, 0, len(summary))
	for _, seg := range summary {
		parts = append(parts, api.ContentPart{
			Type:             api.ContentReasoning,
			Text:             seg.Text,
			ItemID:           item.ID,
			EncryptedContent: item.EncryptedContent,
		})
	}
	return parts
}

// SourceFromAnnotation converts a citation annotation to a canonical Source
// part. A fresh id is generated; the vendor does not assign citation ids.
func SourceFromAnnotation(a *wire.Annotation) api.ContentPart {
	part := api.ContentPart{
		Type: api.ContentSource,
		ID:   uuid.NewString(),
	}
	switch a.Type {
	case wire.AnnotationFileCitation:
		part.SourceType = api.SourceDocument
		part.Filename = a.Filename
		part.Title = firstNonEmpty(a.Quote, a.Filename, "Document")
	default: // url_citation
		part.SourceType = api.SourceURL
		part.URL = a.URL
		part.Title = a.Title
	}
	return part
}

// MapFinishReason derives the canonical finish reason. A client function call
// wins; otherwise the vendor incomplete reason is mapped through a fixed
// table with an "unknown" fallback.
func MapFinishReason(incompleteReason string, hasFunctionCall bool) api.FinishReason {
	if hasFunctionCall {
		return api.FinishToolCalls
	}
	switch incompleteReason {
	case "":
		return api.FinishStop
	case "max_output_tokens":
		return api.FinishLength
	case "content_filter":
		return api.FinishContentFilter
	default:
		return api.FinishUnknown
	}
}

// MapUsage converts vendor token accounting, computing the total when the
// vendor omits it.
func MapUsage(u *wire.Usage) api.Usage {
	if u == nil {
		return api.Usage{}
	}
	usage := api.Usage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	if u.InputTokensDetails != nil {
		usage.CachedInputTokens = u.InputTokensDetails.CachedTokens
	}
	if u.OutputTokensDetails != nil {
		usage.ReasoningTokens = u.OutputTokensDetails.ReasoningTokens
	}
	return usage
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
