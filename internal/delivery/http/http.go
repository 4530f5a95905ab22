package http

import (
	"context"
	"net/http"

	"cryptiq/internal/dto"
	"cryptiq/internal/service"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
	"cryptiq/pkg/middleware"

	"github.com/labstack/echo/v4"
)

const (
	apiRateLimitPerSecond = 5
	apiRateLimitBurst     = 10
)

type HttpAPIHandler struct {
	ctx     context.Context
	echo    *echo.Echo
	log     *logger.Logger
	service *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, log *logger.Logger, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		ctx:     ctx,
		echo:    echo,
		log:     log,
		service: service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/healthz", h.healthz)
	h.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	base := h.echo.Group("/api", middleware.NewRateLimiterMiddleware(apiRateLimitPerSecond, apiRateLimitBurst))
	h.SetupAlerts(base)
}

func (h *HttpAPIHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
}
