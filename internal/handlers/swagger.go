package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"

	_ "github.com/itsaavisos/gateway/docs"
)

const swaggerUIPage = `<!doctype html>
<html>
  <head>
    <title>Avisos Gateway API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      SwaggerUIBundle({
        url: "/api/swagger.json",
        dom_id: "#swagger-ui"
      });
    </script>
  </body>
</html>
`

// SwaggerHandler serves the generated API document and its viewer page.
type SwaggerHandler struct{}

func NewSwaggerHandler() *SwaggerHandler {
	return &SwaggerHandler{}
}

func (h *SwaggerHandler) Register(e *echo.Echo) {
	e.GET("/api/swagger.json", h.Spec)
	e.GET("/api/docs", h.Docs)
}

func (h *SwaggerHandler) Spec(c echo.Context) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return errorDetail(c, http.StatusInternalServerError, "swagger document unavailable")
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(doc))
}

func (h *SwaggerHandler) Docs(c echo.Context) error {
	return c.HTML(http.StatusOK, swaggerUIPage)
}
