package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError represents a non-success response from the admin portal API. Its
// message is the server's own `message` field when the error body is JSON,
// otherwise a message derived from the status code. Server messages pass
// through verbatim - the server is the sole authority on business-rule
// violations.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func parseAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	fallback := fmt.Sprintf("HTTP %d", resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: fallback}
	}

	errPayload := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	if json.Unmarshal(body, &errPayload) != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fallback}
	}

	msg := errPayload.Message
	if msg == "" {
		msg = errPayload.Error
	}
	if msg == "" {
		msg = fallback
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
