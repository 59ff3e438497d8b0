package output

import (
	"encoding/json"
	"io"
)

// ErrorResponse is the JSON body written for a failed command in --json mode.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

// NewError creates an ErrorResponse for msg.
func NewError(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

// PrintJSON writes v to w as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
