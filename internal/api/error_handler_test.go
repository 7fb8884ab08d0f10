package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHTTPErrorHandler(zerolog.Nop())
	h(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_Validation(t *testing.T) {
	code, body := render(t, &domain.ValidationError{Field: "email", Reason: "required"})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	details, _ := body["details"].(map[string]any)
	if details["field"] != "email" {
		t.Fatalf("field detail missing: %+v", body)
	}
}

func TestErrorHandler_Conflict(t *testing.T) {
	code, body := render(t, &domain.ConflictError{Field: "username", Value: "alice"})
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
	details, _ := body["details"].(map[string]any)
	if details["field"] != "username" {
		t.Fatalf("field detail missing: %+v", body)
	}
}

func TestErrorHandler_PermissionDenied(t *testing.T) {
	code, body := render(t, &domain.PermissionDeniedError{
		ActorRole:  domain.RoleAdmin,
		TargetRole: domain.RoleSuperAdmin,
		Operation:  "create",
	})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	details, _ := body["details"].(map[string]any)
	if details["actor_role"] != "ADMIN" || details["target_role"] != "SUPER_ADMIN" {
		t.Fatalf("decision context missing: %+v", body)
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	code, _ := render(t, &domain.NotFoundError{Resource: "user", ID: "x"})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestErrorHandler_Consistency(t *testing.T) {
	code, body := render(t, &domain.ConsistencyError{
		Operation: "add_member",
		GroupID:   "g1",
		Err:       errors.New("write failed"),
	})
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	details, _ := body["details"].(map[string]any)
	if details["group_id"] != "g1" {
		t.Fatalf("group context missing: %+v", body)
	}
}

func TestErrorHandler_Sentinels(t *testing.T) {
	if code, _ := render(t, domain.ErrInvalidCredentials); code != http.StatusUnauthorized {
		t.Fatalf("invalid credentials should be 401, got %d", code)
	}
	if code, _ := render(t, domain.ErrNotAuthenticated); code != http.StatusUnauthorized {
		t.Fatalf("not authenticated should be 401, got %d", code)
	}
}

func TestErrorHandler_EchoErrorPassthrough(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if code != http.StatusTeapot || body["error"] != "short and stout" {
		t.Fatalf("echo error not passed through: %d %+v", code, body)
	}
}

func TestErrorHandler_UnknownErrorOpaque(t *testing.T) {
	code, body := render(t, errors.New("mongo socket reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %+v", body)
	}
}
