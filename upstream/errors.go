package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx reply from the Responses API.
type APIError struct {
	Status    int
	Code      string
	Param     string
	Message   string
	RequestID string
	Body      []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(e.Body))
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("upstream error (status %d, request %s): %s", e.Status, e.RequestID, msg)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, msg)
}

// IsUnsupportedParameter reports whether the error is the vendor rejecting
// the named request parameter.
func (e *APIError) IsUnsupportedParameter(param string) bool {
	if e.Param != "" && strings.EqualFold(strings.TrimSpace(e.Param), strings.TrimSpace(param)) {
		return true
	}
	msg := strings.ToLower(e.Message)
	if msg == "" {
		return false
	}
	return strings.Contains(msg, "unsupported parameter") && strings.Contains(msg, strings.ToLower(strings.TrimSpace(param)))
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Param   string `json:"param"`
	} `json:"error"`
}

// ParseAPIError builds an APIError from a failed response.
func ParseAPIError(status int, body []byte, headers http.Header) *APIError {
	apiErr := &APIError{
		Status:    status,
		Body:      body,
		RequestID: RequestID(headers),
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Param = env.Error.Param
		apiErr.Message = strings.TrimSpace(env.Error.Message)
	}
	return apiErr
}

// RequestID extracts the vendor request identifier from response headers,
// trying the known header spellings in order.
func RequestID(headers http.Header) string {
	if headers == nil {
		return ""
	}
	return firstNonEmpty(
		headers.Get("x-request-id"),
		headers.Get("x-openai-request-id"),
		headers.Get("x-oai-request-id"),
		headers.Get("openai-request-id"),
		headers.Get("request-id"),
		headers.Get("cf-ray"),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
