package request

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidProviderOptions marks configuration errors that fail the call
// before any request is sent.
var ErrInvalidProviderOptions = errors.New("invalid provider options")

// MaxTopLogprobs is the vendor cap on requested logprob alternatives.
const MaxTopLogprobs = 20

// LogprobsSetting accepts either a boolean ("give me logprobs") or an integer
// count of alternatives per token.
type LogprobsSetting struct {
	Requested bool
	Count     int
}

// UnmarshalJSON accepts true/false or a non-negative number. Counts above
// MaxTopLogprobs are clamped, not rejected.
func (l *LogprobsSetting) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		l.Requested = b
		l.Count = 0
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("logprobs must be a boolean or an integer")
	}
	if n < 0 {
		return fmt.Errorf("logprobs must not be negative")
	}
	if n > MaxTopLogprobs {
		n = MaxTopLogprobs
	}
	l.Requested = true
	l.Count = n
	return nil
}

// ProviderOptions is the closed, validated schema for the vendor-specific
// option side channel. Unknown extra fields are ignored; invalid values of
// known fields fail the call.
type ProviderOptions struct {
	Instructions       string           `json:"instructions,omitempty"`
	Metadata           map[string]any   `json:"metadata,omitempty"`
	ParallelToolCalls  *bool            `json:"parallel_tool_calls,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	PromptCacheKey     string           `json:"prompt_cache_key,omitempty"`
	Store              *bool            `json:"store,omitempty"`
	User               string           `json:"user,omitempty"`
	ReasoningEffort    string           `json:"reasoning_effort,omitempty"`
	ReasoningSummary   string           `json:"reasoning_summary,omitempty"`
	ServiceTier        string           `json:"service_tier,omitempty"`
	TextVerbosity      string           `json:"text_verbosity,omitempty"`
	StrictJSONSchema   *bool            `json:"strict_json_schema,omitempty"`
	Include            []string         `json:"include,omitempty"`
	Logprobs           *LogprobsSetting `json:"logprobs,omitempty"`
}

var (
	validEfforts   = set("minimal", "low", "medium", "high", "xhigh")
	validSummaries = set("auto", "concise", "detailed")
	validTiers     = set("auto", "default", "flex", "priority")
	validVerbosity = set("low", "medium", "high")
)

// ParseProviderOptions decodes and validates the side channel. A nil/empty
// payload yields the zero options.
func ParseProviderOptions(raw json.RawMessage) (*ProviderOptions, error) {
	po := &ProviderOptions{}
	if len(raw) == 0 {
		return po, nil
	}
	if err := json.Unmarshal(raw, po); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderOptions, err)
	}
	if err := po.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderOptions, err)
	}
	return po, nil
}

func (po *ProviderOptions) validate() error {
	if po.ReasoningEffort != "" && !validEfforts[po.ReasoningEffort] {
		return fmt.Errorf("reasoning_effort %q is not one of %s", po.ReasoningEffort, keys(validEfforts))
	}
	if po.ReasoningSummary != "" && !validSummaries[po.ReasoningSummary] {
		return fmt.Errorf("reasoning_summary %q is not one of %s", po.ReasoningSummary, keys(validSummaries))
	}
	if po.ServiceTier != "" && !validTiers[po.ServiceTier] {
		return fmt.Errorf("service_tier %q is not one of %s", po.ServiceTier, keys(validTiers))
	}
	if po.TextVerbosity != "" && !validVerbosity[po.TextVerbosity] {
		return fmt.Errorf("text_verbosity %q is not one of %s", po.TextVerbosity, keys(validVerbosity))
	}
	return nil
}

func (po *ProviderOptions) logprobsRequested() bool {
	return po.Logprobs != nil && po.Logprobs.Requested
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func keys(m map[string]bool) string {
	out := ""
	for _, v := range []string{"minimal", "low", "medium", "high", "xhigh", "auto", "default", "flex", "priority", "concise", "detailed"} {
		if m[v] {
			if out != "" {
				out += ", "
			}
			out += v
		}
	}
	return out
}
