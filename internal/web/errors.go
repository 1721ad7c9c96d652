package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with full technical detail server-side and returned
// to the client as a user-friendly JSON message carrying a stable code that
// support staff can reference.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. The error is mapped to a status code and a UserMessage
//  4. Technical error + context is logged with the request ID for correlation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sheetpix/catalog/internal/export"
	"github.com/sheetpix/catalog/internal/logging"
	"github.com/sheetpix/catalog/internal/store"
	"github.com/sheetpix/catalog/internal/view"
)

// ErrorResponse is the JSON structure for API error responses. It includes
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// UserMessage is the user-facing rendering of a technical error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // stable code for support reference
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again; contact support if the problem persists",
	Code:    "SYS001",
}

// mapError resolves an error to an HTTP status and a user message. Sentinel
// errors are matched first; everything else falls through to substring
// patterns on the error text, then the generic default.
func mapError(err error) (int, UserMessage) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, UserMessage{
			Message: "The requested template or product was not found",
			Action:  "Check the identifier and try again",
			Code:    "TPL404",
		}
	case errors.Is(err, view.ErrEmptyProductKey):
		return http.StatusBadRequest, UserMessage{
			Message: "A product key is required",
			Action:  "Provide a non-empty product key",
			Code:    "REQ003",
		}
	case errors.Is(err, view.ErrUnknownScenarioMode):
		return http.StatusBadRequest, UserMessage{
			Message: "Unknown scenario mode",
			Action:  "Use one of the supported scenario modes",
			Code:    "SCN001",
		}
	case errors.Is(err, export.ErrTooManyExports):
		return http.StatusTooManyRequests, UserMessage{
			Message: "Too many exports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "EXP001",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, UserMessage{
			Message: "The operation timed out",
			Action:  "Try again, or narrow the request",
			Code:    "SYS002",
		}
	case errors.Is(err, context.Canceled):
		return 499, UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "SYS003",
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "connection reset"):
		return http.StatusServiceUnavailable, UserMessage{
			Message: "The database is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		}
	case strings.Contains(errStr, "duplicate key"),
		strings.Contains(errStr, "unique constraint"):
		return http.StatusConflict, UserMessage{
			Message: "A record with this identifier already exists",
			Action:  "Review the request for duplicate values",
			Code:    "DB001",
		}
	}

	return http.StatusInternalServerError, defaultMessage
}

// respondError logs the technical error and writes the mapped JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, userMsg := mapError(err)

	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, status)
}

// respondBadRequest writes a 400 for malformed client input without going
// through error mapping.
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	logger := logging.FromContext(r.Context())
	logger.Warn("bad request",
		"path", r.URL.Path,
		"method", r.Method,
		"reason", message,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, UserMessage{
		Message: message,
		Action:  "Correct the request and try again",
		Code:    "REQ001",
	}, http.StatusBadRequest)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but note it.
		slog.Error("json encode error", "error", err)
	}
}
