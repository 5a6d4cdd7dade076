package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoRows is matched by errors.Is when a single-row request found nothing
var ErrNoRows = errors.New("supabase: no rows")

// codeNoRows is the PostgREST code for a singular response with zero rows
const codeNoRows = "PGRST116"

// Error is a non-2xx response from PostgREST or GoTrue
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase error (status %d, code %s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNoRows) match a PGRST116 response
func (e *Error) Is(target error) bool {
	return target == ErrNoRows && e.Code == codeNoRows
}

// IsStatus reports whether err is a supabase Error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// parseError builds an Error from a response body. PostgREST answers with
// {code, message, details, hint}; GoTrue uses {error, error_description}
// or {code, msg, error_code}.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var payload struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Details          string          `json:"details"`
		Hint             string          `json:"hint"`
		ErrorName        string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = string(body)
		return apiErr
	}

	var code string
	if err := json.Unmarshal(payload.Code, &code); err == nil {
		apiErr.Code = code
	}
	if apiErr.Code == "" {
		apiErr.Code = payload.ErrorCode
	}
	if apiErr.Code == "" {
		apiErr.Code = payload.ErrorName
	}

	switch {
	case payload.Message != "":
		apiErr.Message = payload.Message
	case payload.Msg != "":
		apiErr.Message = payload.Msg
	case payload.ErrorDescription != "":
		apiErr.Message = payload.ErrorDescription
	default:
		apiErr.Message = string(body)
	}
	apiErr.Details = payload.Details
	apiErr.Hint = payload.Hint

	return apiErr
}
