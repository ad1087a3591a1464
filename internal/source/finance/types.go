package finance

import (
	"encoding/json"
	"strings"
)

// markReadRequest is the body of PUT /notifications/{id}.
type markReadRequest struct {
	IsRead bool `json:"is_read"`
}

// MessageResponse is returned by DELETE and mark-all-read endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's error envelope. Detail is a string for
// application errors and a list of objects for validation errors.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// validationIssue is one entry of a 422 detail list.
type validationIssue struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// Text renders Detail as a single human-readable line.
func (e ErrorResponse) Text() string {
	if len(e.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}

	var issues []validationIssue
	if err := json.Unmarshal(e.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			msgs = append(msgs, is.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(e.Detail)
}
