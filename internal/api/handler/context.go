package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// actorID extracts the authenticated account's record id injected by the Auth
// middleware. Presence of a non-empty "sub" claim proves the middleware ran;
// without it the request must not reach any service call.
func actorID(c echo.Context) (string, error) {
	sub, _ := c.Get("sub").(string)
	if sub == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sub, nil
}
