// Package server exposes the transfer pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/health"
	"github.com/Hunscuzzy/crunch-privy-sponsorship/internal/metrics"
)

type Server struct {
	echo *echo.Echo
	port string
	log  *logrus.Logger
}

func New(port string, h *Handler, log *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(metrics.HTTPMiddleware())

	e.GET("/healthz", health.Handler())
	e.POST("/v1/transfers", h.CreateTransfer)
	e.GET("/v1/balances/:address", h.GetBalances)

	return &Server{
		echo: e,
		port: port,
		log:  log,
	}
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.log.Infof("api server listening on :%s", s.port)
	if err := s.echo.Start(":" + s.port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
