// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"net/url"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// InfoResponse describes the service on GET /.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FormDecoder is implemented by request types that also accept form encoding.
type FormDecoder interface {
	FromForm(form url.Values)
}

// NumberString holds a numeric field as text. It accepts JSON strings and
// JSON numbers so {"mass": 1e23} and {"mass": "1e23"} decode alike.
type NumberString string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumberString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NumberString(num)
	return nil
}
