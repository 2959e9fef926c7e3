package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/itsaavisos/gateway/internal/graph"
	"github.com/itsaavisos/gateway/internal/msal"
)

// successPage posts the token and profile to the opener window and closes
// itself. The message shape and target origin are consumed by the frontend;
// both outcomes render as 200 so the popup can always deliver a message.
var successPage = template.Must(template.New("auth_success").Parse(`<!doctype html>
<html>
  <head>
    <style>
      body { font-family: Arial; text-align: center; padding: 20px; }
    </style>
  </head>
  <body>
    <h2>Authentication successful</h2>
    <p>You can close this window</p>
    <script>
      window.opener.postMessage({
        type: "MSAL_AUTH",
        token: {{.Token}},
        user: { name: {{.Name}}, email: {{.Email}} }
      }, {{.Origin}});
      window.close();
    </script>
  </body>
</html>
`))

var errorPage = template.Must(template.New("auth_error").Parse(`<!doctype html>
<html>
  <body>
    <script>
      window.opener.postMessage({
        type: "AUTH_ERROR",
        error: {{.Error}}
      }, {{.Origin}});
      window.close();
    </script>
  </body>
</html>
`))

// AuthHandler drives the login popup flow against the identity provider.
type AuthHandler struct {
	msal           *msal.Client
	graph          *graph.Client
	frontendOrigin string
	logger         *slog.Logger
}

func NewAuthHandler(log *slog.Logger, msalClient *msal.Client, graphClient *graph.Client, frontendOrigin string) *AuthHandler {
	return &AuthHandler{
		msal:           msalClient,
		graph:          graphClient,
		frontendOrigin: frontendOrigin,
		logger:         log.With(slog.String("handler", "auth")),
	}
}

func (h *AuthHandler) Register(e *echo.Echo) {
	e.GET("/auth/login", h.Login)
	e.GET("/auth/callback", h.Callback)
	e.GET("/auth/logout", h.Logout)
}

// Login redirects the popup to the Microsoft consent URL.
func (h *AuthHandler) Login(c echo.Context) error {
	state := uuid.NewString()
	return c.Redirect(http.StatusFound, h.msal.AuthCodeURL(state))
}

// Callback exchanges the authorization code, fetches the caller's profile,
// and hands both to the opener window. Every outcome is a 200 HTML page; the
// typed message tells the frontend whether login succeeded.
func (h *AuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return h.renderError(c, "authorization code is missing")
	}

	tokens, err := h.msal.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		h.logger.Warn("code exchange failed", slog.Any("error", err))
		return h.renderError(c, err.Error())
	}

	// Profile lookup is best effort; the frontend can live without a name.
	name, email := "", ""
	profile, err := h.graph.Me(c.Request().Context(), graph.Token(tokens.AccessToken))
	if err != nil {
		h.logger.Warn("profile fetch failed", slog.Any("error", err))
	} else {
		name = profile.DisplayName
		email = profile.Email()
	}

	return h.renderPage(c, successPage, map[string]string{
		"Token":  tokens.AccessToken,
		"Name":   name,
		"Email":  email,
		"Origin": h.frontendOrigin,
	})
}

// Logout revokes the supplied refresh token at the provider.
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := c.QueryParam("refresh_token")
	clientID := c.QueryParam("client_id")
	clientSecret := c.QueryParam("client_secret")
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		return errorDetail(c, http.StatusBadRequest, "refresh_token, client_id and client_secret are required")
	}

	if err := h.msal.RevokeRefreshToken(c.Request().Context(), refreshToken, clientID, clientSecret); err != nil {
		h.logger.Error("revoke refresh token failed", slog.Any("error", err))
		return errorDetail(c, http.StatusInternalServerError, "could not close session: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "session closed successfully",
	})
}

func (h *AuthHandler) renderError(c echo.Context, message string) error {
	return h.renderPage(c, errorPage, map[string]string{
		"Error":  message,
		"Origin": h.frontendOrigin,
	})
}

func (h *AuthHandler) renderPage(c echo.Context, page *template.Template, data map[string]string) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		h.logger.Error("render auth page failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "render auth page")
	}
	return c.HTML(http.StatusOK, buf.String())
}
