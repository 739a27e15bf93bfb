package xoapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

// XO API error codes.
const (
	CodeNotImplemented     = 0
	CodeNoSuchObject       = 1
	CodeUnauthorized       = 2
	CodeInvalidCredentials = 3
	CodeForbidden          = 5
	CodeInvalidParameters  = 10
)

// Error is a JSON-RPC error object returned by XO.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("xo error %d: %s", e.Code, e.Message)
}

// Unwrap maps the XO error onto the domain sentinels so callers can use
// errors.Is without knowing XO codes.
func (e *Error) Unwrap() error {
	switch e.Code {
	case CodeNoSuchObject:
		return domain.ErrNotFound
	case CodeUnauthorized, CodeInvalidCredentials, CodeForbidden:
		return domain.ErrUnauthorized
	}

	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "no such object"), strings.Contains(msg, "not found"):
		return domain.ErrNotFound
	case strings.Contains(msg, "too many requests"), strings.Contains(msg, "rate limit"):
		return domain.ErrRateLimited
	}
	return nil
}
