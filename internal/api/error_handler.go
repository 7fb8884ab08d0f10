package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/api/metrics"
	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Details
// carries machine-readable context for policy and validation failures.
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the typed domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "details": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		pe *domain.PermissionDeniedError
		ne *domain.NotFoundError
		se *domain.ConsistencyError
	)
	switch {
	case errors.As(err, &ve):
		details := map[string]string{}
		if ve.Field != "" {
			details["field"] = ve.Field
		}
		return http.StatusBadRequest, errorResponse{Error: ve.Error(), Details: details}

	case errors.As(err, &ce):
		return http.StatusConflict, errorResponse{
			Error:   ce.Error(),
			Details: map[string]string{"field": ce.Field},
		}

	case errors.As(err, &pe):
		metrics.PermissionDeniedTotal.WithLabelValues(pe.Operation).Inc()
		details := map[string]string{
			"actor_role": string(pe.ActorRole),
			"operation":  pe.Operation,
		}
		if pe.TargetRole != "" {
			details["target_role"] = string(pe.TargetRole)
		}
		if pe.GroupType != "" {
			details["group_type"] = string(pe.GroupType)
		}
		return http.StatusForbidden, errorResponse{Error: pe.Error(), Details: details}

	case errors.As(err, &ne):
		return http.StatusNotFound, errorResponse{Error: ne.Error()}

	case errors.As(err, &se):
		// Partial writes are surfaced distinctly so clients know the group
		// side landed and reconciliation is needed, not a blind retry.
		log.Error().
			Err(se.Err).
			Str("operation", se.Operation).
			Str("group_id", se.GroupID).
			Msg("membership write partially applied")
		return http.StatusInternalServerError, errorResponse{
			Error: se.Error(),
			Details: map[string]string{
				"operation": se.Operation,
				"group_id":  se.GroupID,
			},
		}

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}

	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
