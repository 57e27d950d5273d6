package hrapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const FallbackMessage = "An unexpected error occurred"

// Error is the normalized failure of a backend call. Status is zero for transport
// failures (network, timeout, undecodable body).
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorMessage reduces any error to the single string shown to users.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return FallbackMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}

func transportError(err error) *Error {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = FallbackMessage
	}
	return &Error{Message: msg, Err: err}
}

func statusError(status int, body []byte) *Error {
	if msg := messageFromBody(body); msg != "" {
		return &Error{Status: status, Message: msg}
	}
	return &Error{
		Status:  status,
		Message: fmt.Sprintf("Request failed with status code %d", status),
	}
}

// messageFromBody pulls "detail" and then "message" out of a JSON error body. A detail
// list (request validation errors) yields its first "msg".
func messageFromBody(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := rawString(payload.Detail); msg != "" {
		return msg
	}
	var details []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &details); err == nil {
		for _, d := range details {
			if msg := strings.TrimSpace(d.Msg); msg != "" {
				return msg
			}
		}
	}
	return rawString(payload.Message)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
