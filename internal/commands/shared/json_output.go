// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/tombee/courier/internal/dispatch"
	couriererrors "github.com/tombee/courier/pkg/errors"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message and suggestion
type JSONError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Suggestion    string `json:"suggestion,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewResponse returns a filled envelope for command.
func NewResponse(command string, success bool) JSONResponse {
	return JSONResponse{Version: "1.0", Command: command, Success: success}
}

// EmitJSON writes response to w as indented JSON.
func EmitJSON(w io.Writer, response any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// EmitJSONError writes a failed envelope carrying errs.
func EmitJSONError(w io.Writer, command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	return EmitJSON(w, errorResponse{
		JSONResponse: NewResponse(command, false),
		Errors:       errs,
	})
}

// ToJSONError converts err for JSON output. Dispatch failures never expose
// more than their user-safe message.
func ToJSONError(err error) JSONError {
	var f *dispatch.Failure
	if errors.As(err, &f) {
		return JSONError{
			Code:          f.ErrorType(),
			Message:       f.UserMessage(),
			Suggestion:    f.Suggestion(),
			CorrelationID: f.CorrelationID,
		}
	}
	je := JSONError{Code: couriererrors.ErrorType(err), Message: err.Error()}
	if je.Code == "" {
		je.Code = "error"
	}
	var uv couriererrors.UserVisibleError
	if errors.As(err, &uv) {
		je.Suggestion = uv.Suggestion()
	}
	return je
}
