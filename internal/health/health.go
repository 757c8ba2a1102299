package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type response struct {
	Status string `json:"status"`
}

// Handler answers liveness probes.
func Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, response{Status: "ok"})
	}
}
