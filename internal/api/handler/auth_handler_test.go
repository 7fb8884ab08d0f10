package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn       func(ctx context.Context, email, password string) (string, *domain.User, error)
	currentUserFn func(ctx context.Context, actorID string) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, actorID string) (*domain.User, error) {
	return s.currentUserFn(ctx, actorID)
}

type stubUserService struct {
	createFn func(ctx context.Context, actorID string, in ports.CreateUserInput) (*domain.User, error)
	listFn   func(ctx context.Context, actorID string, page, limit int64) (*ports.UserListResult, error)
	deleteFn func(ctx context.Context, actorID, userID string) error
	nextIDFn func(ctx context.Context, role string) (string, error)
	groupsFn func(ctx context.Context, actorID string) ([]*domain.Group, error)
}

func (s *stubUserService) Create(ctx context.Context, actorID string, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actorID, in)
}
func (s *stubUserService) Get(ctx context.Context, actorID, userID string) (*domain.User, error) {
	panic("not used")
}
func (s *stubUserService) List(ctx context.Context, actorID string, page, limit int64) (*ports.UserListResult, error) {
	return s.listFn(ctx, actorID, page, limit)
}
func (s *stubUserService) Update(ctx context.Context, actorID, userID string, in ports.UpdateUserInput) (*domain.User, error) {
	panic("not used")
}
func (s *stubUserService) Delete(ctx context.Context, actorID, userID string) error {
	return s.deleteFn(ctx, actorID, userID)
}
func (s *stubUserService) NextID(ctx context.Context, role string) (string, error) {
	return s.nextIDFn(ctx, role)
}
func (s *stubUserService) Groups(ctx context.Context, actorID string) ([]*domain.Group, error) {
	return s.groupsFn(ctx, actorID)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "id1", UserID: "A1", Username: "alice", Role: domain.RoleAdmin}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "ADMIN" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if user["id"] != "id1" {
		t.Fatalf("record id must be exposed, got %v", user["id"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials passed to the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login_MissingEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Me_ProjectsGroups(t *testing.T) {
	e := newTestEcho()
	auth := &stubAuthService{
		currentUserFn: func(ctx context.Context, actorID string) (*domain.User, error) {
			if actorID != "id1" {
				t.Fatalf("unexpected actor: %s", actorID)
			}
			return &domain.User{ID: "id1", UserID: "A1", Role: domain.RoleAdmin, Groups: []string{"g1"}}, nil
		},
	}
	users := &stubUserService{
		groupsFn: func(ctx context.Context, actorID string) ([]*domain.Group, error) {
			return []*domain.Group{{ID: "g1", Type: domain.GroupTypeAdmin, Members: []string{"id1"}}}, nil
		},
	}
	handler := NewAuthHandler(auth, users)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("sub", "id1")

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["admin_group"] != "g1" {
		t.Fatalf("admin_group projection missing: %+v", resp)
	}
	if _, ok := resp["unit_manager_group"]; ok {
		t.Fatalf("unit_manager_group must be omitted when absent: %+v", resp)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
