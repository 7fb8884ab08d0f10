package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceapp/user-management-system/internal/api/metrics"
	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type AuthHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// meResponse carries the actor's record plus the single-group references
// older clients still read. Both are projected from the canonical Groups set
// at read time, never stored.
type meResponse struct {
	User             userResponse `json:"user"`
	AdminGroup       string       `json:"admin_group,omitempty"`
	UnitManagerGroup string       `json:"unit_manager_group,omitempty"`
}

// Login authenticates by email and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

// Me returns the authenticated actor's own record with its group projections.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	user, err := h.auth.CurrentUser(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	resp := meResponse{User: toUserResponse(user)}
	if len(user.Groups) > 0 {
		groups, err := h.users.Groups(c.Request().Context(), actor)
		if err != nil {
			return err
		}
		if g := user.GroupOfType(groups, domain.GroupTypeAdmin); g != nil {
			resp.AdminGroup = g.ID
		}
		if g := user.GroupOfType(groups, domain.GroupTypeUnitManager); g != nil {
			resp.UnitManagerGroup = g.ID
		}
	}
	return c.JSON(http.StatusOK, resp)
}
