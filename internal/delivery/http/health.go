package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Health struct {
	db Pinger
}

func NewHealth(db Pinger) *Health {
	return &Health{db: db}
}

func (h *Health) Configure(server *echo.Echo) {
	server.GET("/healthz", h.Check)
}

func (h *Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		c.Logger().Errorf("База данных недоступна: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
