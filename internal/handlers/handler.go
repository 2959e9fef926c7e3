// Package handlers exposes the gateway's HTTP surface: the authentication
// flow, the filtered directory listing, and the Teams message endpoints.
package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/itsaavisos/gateway/internal/graph"
)

// ErrorResponse is the generic error body for non-2xx responses.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// bearerToken extracts the delegated Graph credential from the Authorization
// header. The gateway never mints its own tokens; it forwards the caller's.
func bearerToken(c echo.Context) (graph.Token, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
		return "", false
	}
	return graph.Token(strings.TrimSpace(value)), true
}

// errorDetail renders a FastAPI-shaped error body, which the existing
// frontend expects.
func errorDetail(c echo.Context, status int, detail any) error {
	return c.JSON(status, ErrorResponse{Detail: detail})
}
