package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"ghpayroll/internal/domain/employee"
	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/platform/jobs"
	"ghpayroll/internal/platform/validate"
	"ghpayroll/internal/transport/http/api"
)

// DecodeJSON reads one JSON document into dst, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid json payload: trailing data")
	}
	return nil
}

func FailValidation(w http.ResponseWriter, requestID string, issues []validate.Issue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

// FailError maps a domain error to its HTTP status and error code.
func FailError(w http.ResponseWriter, requestID string, err error) {
	if issues := validate.Issues(err); len(issues) > 0 {
		FailValidation(w, requestID, issues)
		return
	}
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	case errors.Is(err, payroll.ErrInvalidRates):
		slog.Error("rate configuration rejected", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "rate_configuration_error", "payroll rate configuration is invalid", requestID)
	case errors.Is(err, payroll.ErrUnknownRateTable):
		api.Fail(w, http.StatusBadRequest, "unknown_rate_table", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidInput), errors.Is(err, employee.ErrInvalidInput), errors.Is(err, ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, employee.ErrNotFound), errors.Is(err, jobs.ErrRunNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, jobs.ErrQueueFull):
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", requestID)
	default:
		slog.Error("request failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
