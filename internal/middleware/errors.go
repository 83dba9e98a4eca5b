package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problemDetails is an RFC 7807 Problem Details body. The middleware layer
// only rejects with 401, so this is a trimmed copy of the handler package's
// error vocabulary.
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const errorTypeUnauthorized = "https://taxmate.app/errors/unauthorized"

func unauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, problemDetails{
		Type:     errorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}
