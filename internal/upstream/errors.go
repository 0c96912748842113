package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError describes a failed upstream call. Message is the best-effort upstream
// explanation and is safe to hand to clients.
type APIError struct {
	Status  int    // Status is the upstream HTTP status, 0 when no response was received.
	Message string // Message is the upstream error message or a fallback.
}

func (e *APIError) Error() string {
	return e.Message
}

// upstreamMessage extracts an error message from an upstream JSON body.
// ORS answers either {"error":"..."} or {"error":{"code":..,"message":"..."}}.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var text string
		if err := json.Unmarshal(payload.Error, &text); err == nil && text != "" {
			return text
		}

		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}

	return payload.Message
}

// newAPIError builds an APIError from a non-2xx upstream response. When the body carries
// no message, fallback is used; an empty fallback embeds the raw status and body.
func newAPIError(status int, body []byte, fallback string) *APIError {
	msg := upstreamMessage(body)
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = fmt.Sprintf("API returned %d: %s", status, strings.TrimSpace(string(body)))
	}

	return &APIError{Status: status, Message: msg}
}
