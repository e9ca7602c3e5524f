// Package models is the static capability matrix: pure prefix-rule lookups
// from a model id to the feature flags that gate request fields. No I/O,
// process-wide constant data, safe for concurrent use.
package models

import "strings"

// SystemMessageMode controls how system prompt turns are sent.
type SystemMessageMode string

const (
	// SystemMessageRemove drops system turns entirely (legacy o1 variants).
	SystemMessageRemove SystemMessageMode = "remove"
	// SystemMessageSystem keeps the plain "system" role.
	SystemMessageSystem SystemMessageMode = "system"
	// SystemMessageDeveloper sends system turns as the "developer" role.
	SystemMessageDeveloper SystemMessageMode = "developer"
)

// Capabilities are the static per-model facts used by the request builder.
type Capabilities struct {
	IsReasoningModel       bool
	SystemMessageMode      SystemMessageMode
	RequiredAutoTruncation bool
	SupportsFlexTier       bool
	SupportsPriorityTier   bool
	// ForcesStoreDisabled marks models served by the codex backend, which
	// rejects stored responses.
	ForcesStoreDisabled bool
}

// Reasoning model families. First match wins; the chat prefix is checked
// before the broader gpt-5 family it would otherwise fall into.
var (
	chatPrefix        = "gpt-5-chat"
	reasoningPrefixes = []string{"o", "gpt-5", "codex-", "computer-use"}
	removeModePrefix  = []string{"o1-mini", "o1-preview"}

	flexPrefixes     = []string{"o3", "o4-mini", "gpt-5"}
	priorityPrefixes = []string{"gpt-4", "gpt-5", "o3", "o4-mini"}
)

// For returns the capability profile for a model id. Total function: unknown
// ids get the plain non-reasoning chat profile.
func For(modelID string) Capabilities {
	id := strings.ToLower(strings.TrimSpace(modelID))

	caps := Capabilities{
		SystemMessageMode:    SystemMessageSystem,
		SupportsFlexTier:     supportsFlexTier(id),
		SupportsPriorityTier: supportsPriorityTier(id),
		ForcesStoreDisabled:  strings.HasPrefix(id, "codex-"),
	}

	if strings.HasPrefix(id, chatPrefix) {
		return caps
	}

	for _, prefix := range reasoningPrefixes {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		caps.IsReasoningModel = true
		caps.SystemMessageMode = SystemMessageDeveloper
		for _, legacy := range removeModePrefix {
			if strings.HasPrefix(id, legacy) {
				caps.SystemMessageMode = SystemMessageRemove
			}
		}
		caps.RequiredAutoTruncation = strings.HasPrefix(id, "computer-use")
		return caps
	}

	return caps
}

func supportsFlexTier(id string) bool {
	if strings.HasPrefix(id, chatPrefix) {
		return false
	}
	return hasAnyPrefix(id, flexPrefixes)
}

func supportsPriorityTier(id string) bool {
	if strings.HasPrefix(id, chatPrefix) {
		return false
	}
	return hasAnyPrefix(id, priorityPrefixes)
}

func hasAnyPrefix(id string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// FlexFamilies and PriorityFamilies name the model families supporting each
// elevated service tier, for warning details.
func FlexFamilies() string { return strings.Join(flexPrefixes, ", ") }

// PriorityFamilies names the families supporting the priority tier.
func PriorityFamilies() string { return strings.Join(priorityPrefixes, ", ") }
