package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server serves the Prometheus scrape endpoint on its own port.
type Server struct {
	echo *echo.Echo
	log  *logrus.Logger
}

// StartMetricsServer registers the requested service metrics and starts the
// /metrics endpoint in the background.
func StartMetricsServer(port string, services []string, log *logrus.Logger) *Server {
	RegisterMetrics(services, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()

	log.Infof("metrics server listening on :%s", port)

	return &Server{echo: e, log: log}
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
