package api

import (
	"errors"
	"net/http"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/storage"
)

// MapError dispatches a core error to an HTTP status and response body.
// Look-Up execution failures are dispatched by type via lookuperr.TypeOf,
// never by string-matching the error message (spec §7); storage sentinel
// errors get their own cases since they never flow through lookuperr.
func MapError(err error) (int, ErrorResponse) {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), ErrorType: "not_found"}
	}
	var linked *storage.LinkedProjectsError
	if errors.As(err, &linked) {
		return http.StatusBadRequest, ErrorResponse{
			Error:                      err.Error(),
			ErrorType:                  "linked_prompt_studio_projects",
			LinkedPromptStudioProjects: linked.PromptStudioProjectIDs,
		}
	}
	if errors.Is(err, storage.ErrConflict) {
		return http.StatusConflict, ErrorResponse{Error: err.Error(), ErrorType: "conflict"}
	}

	errType := lookuperr.TypeOf(err)
	body := ErrorResponse{Error: err.Error(), ErrorType: string(errType)}

	var cwe *lookuperr.ContextWindowExceeded
	if errors.As(err, &cwe) {
		body.TokenCount = cwe.TokenCount
		body.ContextLimit = cwe.Limit
		body.Model = cwe.Model
	}

	if errType == lookuperr.ErrorTypeUnknown {
		return http.StatusInternalServerError, body
	}
	return http.StatusBadRequest, body
}
