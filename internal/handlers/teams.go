package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/itsaavisos/gateway/internal/assets"
	"github.com/itsaavisos/gateway/internal/dispatch"
	"github.com/itsaavisos/gateway/internal/graph"
)

// messagePreviewLimit caps how much of a failed message is echoed back in
// the error detail.
const messagePreviewLimit = 100

// TeamsHandler serves the Teams message dispatch endpoints.
type TeamsHandler struct {
	dispatch *dispatch.Service
	logger   *slog.Logger
}

func NewTeamsHandler(log *slog.Logger, dispatchService *dispatch.Service) *TeamsHandler {
	return &TeamsHandler{
		dispatch: dispatchService,
		logger:   log.With(slog.String("handler", "teams")),
	}
}

func (h *TeamsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/teams")
	group.POST("/send-message", h.SendMessage)
	group.POST("/send-message-with-attachment", h.SendMessageWithAttachment)
}

type sendMessageRequest struct {
	ID      string `json:"id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type sendWithAttachmentRequest struct {
	ID       []string `json:"id" validate:"required,min=1,dive,required"`
	Message  string   `json:"message" validate:"required"`
	File     string   `json:"file" validate:"required"`
	FileName string   `json:"file_name" validate:"required"`
}

// SendMessage godoc
// @Summary Send a plain text message
// @Description Creates a one-on-one chat with the recipient and posts the text into it
// @Tags teams
// @Accept json
// @Produce json
// @Success 200 {object} graph.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/teams/send-message [post]
func (h *TeamsHandler) SendMessage(c echo.Context) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorDetail(c, http.StatusUnauthorized, "bearer token is required")
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return errorDetail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return errorDetail(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.dispatch.SendText(c.Request().Context(), token, req.ID, req.Message)
	if err != nil {
		h.logger.Error("send message failed",
			slog.String("recipient_id", req.ID),
			slog.Any("error", err),
		)
		return errorDetail(c, http.StatusInternalServerError, map[string]string{
			"error":           "failed to send message",
			"internal_error":  err.Error(),
			"user_id":         req.ID,
			"message_content": previewMessage(req.Message),
		})
	}
	return c.JSON(http.StatusOK, result)
}

// SendMessageWithAttachment godoc
// @Summary Send a message with a file attachment
// @Description Uploads the file once, then sends a card-plus-attachment message to each recipient
// @Tags teams
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/teams/send-message-with-attachment [post]
func (h *TeamsHandler) SendMessageWithAttachment(c echo.Context) error {
	token, ok := bearerToken(c)
	if !ok {
		return errorDetail(c, http.StatusUnauthorized, "bearer token is required")
	}
	var req sendWithAttachmentRequest
	if err := c.Bind(&req); err != nil {
		return errorDetail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return errorDetail(c, http.StatusBadRequest, err.Error())
	}
	content, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		return errorDetail(c, http.StatusBadRequest, "file is not valid base64")
	}

	results, err := h.dispatch.SendFileToRecipients(c.Request().Context(), token, req.ID, req.Message, content, req.FileName)
	if err != nil {
		return h.attachmentError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"results": results,
	})
}

// attachmentError maps shared-step failures: Graph rejections keep their
// upstream status and body text, payload validation maps to 400, anything
// else is a 500.
func (h *TeamsHandler) attachmentError(c echo.Context, err error) error {
	if statusErr, ok := graph.AsStatusError(err); ok {
		return errorDetail(c, statusErr.Status, "Graph API error: "+statusErr.Body)
	}
	if errors.Is(err, assets.ErrEmptyPayload) || errors.Is(err, assets.ErrPayloadTooLarge) || errors.Is(err, assets.ErrMissingFileName) {
		return errorDetail(c, http.StatusBadRequest, err.Error())
	}
	h.logger.Error("send with attachment failed", slog.Any("error", err))
	return errorDetail(c, http.StatusInternalServerError, "internal server error: "+err.Error())
}

// previewMessage truncates long message content for error details. The
// limit counts characters, not bytes, so multibyte text is never split
// mid-rune.
func previewMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= messagePreviewLimit {
		return message
	}
	return string(runes[:messagePreviewLimit]) + "..."
}
