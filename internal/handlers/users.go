package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/itsaavisos/gateway/internal/directory"
)

// UsersHandler serves the filtered student directory.
type UsersHandler struct {
	directory *directory.Service
	logger    *slog.Logger
}

func NewUsersHandler(log *slog.Logger, directoryService *directory.Service) *UsersHandler {
	return &UsersHandler{
		directory: directoryService,
		logger:    log.With(slog.String("handler", "users")),
	}
}

func (h *UsersHandler) Register(e *echo.Echo) {
	e.GET("/api/users/all", h.ListAll)
}

// ListAll godoc
// @Summary List enrolled students
// @Description Lists tenant users whose mail encodes an institutional id, sorted by display name
// @Tags users
// @Produce json
// @Success 200 {object} map[string][]directory.Record
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/users/all [get]
func (h *UsersHandler) ListAll(c echo.Context) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorDetail(c, http.StatusUnauthorized, "bearer token is required")
	}
	records, err := h.directory.List(c.Request().Context(), token)
	if err != nil {
		h.logger.Error("list directory failed", slog.Any("error", err))
		return errorDetail(c, http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, map[string][]directory.Record{
		"usuarios": records,
	})
}
