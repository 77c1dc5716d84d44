package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/companylookup/internal/domain"
)

// Status is the coarse outcome carried by every response envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Machine-readable error codes carried in ErrorDetail.Code.
const (
	CodeCompanyNotFound   = "COMPANY_NOT_FOUND"
	CodeStockNotFound     = "STOCK_NOT_FOUND"
	CodeSECAPIError       = "SEC_API_ERROR"
	CodeExternalAPIError  = "EXTERNAL_API_ERROR"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeValidationError   = "VALIDATION_ERROR"
)

// ErrorDetail describes one problem with a request.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message"`
	Data      interface{}            `json:"data,omitempty"`
	Errors    []ErrorDetail          `json:"errors,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond stamps and writes an envelope.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, httpStatus int, env Envelope) {
	env.Timestamp = time.Now().UTC()
	env.RequestID = requestIDFrom(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) respondSuccess(w http.ResponseWriter, r *http.Request, message string, data interface{}, metadata map[string]interface{}) {
	s.respond(w, r, http.StatusOK, Envelope{
		Status:   StatusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

func (s *Server) respondStatus(w http.ResponseWriter, r *http.Request, status Status, message string, data interface{}, metadata map[string]interface{}) {
	s.respond(w, r, http.StatusOK, Envelope{
		Status:   status,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// respondValidationError rejects a request at the boundary.
func (s *Server) respondValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	s.respond(w, r, http.StatusBadRequest, Envelope{
		Status:  StatusError,
		Message: "Request validation failed",
		Errors: []ErrorDetail{{
			Type:    "validation_error",
			Message: message,
			Code:    CodeValidationError,
			Field:   field,
		}},
	})
}

func (s *Server) respondNotFound(w http.ResponseWriter, r *http.Request, code, message string) {
	s.respond(w, r, http.StatusNotFound, Envelope{
		Status:  StatusError,
		Message: message,
		Errors: []ErrorDetail{{
			Type:    "not_found",
			Message: message,
			Code:    code,
		}},
	})
}

func (s *Server) respondUpstreamError(w http.ResponseWriter, r *http.Request, code, message string) {
	s.respond(w, r, http.StatusBadGateway, Envelope{
		Status:  StatusError,
		Message: message,
		Errors: []ErrorDetail{{
			Type:    "external_api_error",
			Message: message,
			Code:    code,
		}},
	})
}

func (s *Server) respondRateLimited(w http.ResponseWriter, r *http.Request, message string) {
	s.respond(w, r, http.StatusTooManyRequests, Envelope{
		Status:  StatusError,
		Message: message,
		Errors: []ErrorDetail{{
			Type:    "rate_limit",
			Message: message,
			Code:    CodeRateLimitExceeded,
		}},
	})
}

// isRateLimited reports whether an upstream throttled us.
func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
