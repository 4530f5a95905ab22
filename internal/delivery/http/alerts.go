package http

import (
	"errors"
	"net/http"

	"cryptiq/internal/dto"
	"cryptiq/internal/service"
	"cryptiq/internal/strategy"
	"cryptiq/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAlerts(base *echo.Group) {
	v1 := base.Group("/v1/alerts")
	{
		v1.POST("/run", h.RunAlerts)
	}
}

// RunAlerts runs one alert cycle now and answers with its result.
func (h *HttpAPIHandler) RunAlerts(c echo.Context) error {
	result, err := h.service.AlertScheduler.RunOnce(c.Request().Context())
	if errors.Is(err, service.ErrCycleRunning) {
		return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, err.Error(), nil))
	}

	response := dto.NewBaseResponse(http.StatusOK, result.Status(), dto.NewAlertRunResponse(result.ExitCode, result.Output))
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Manual alert cycle failed", logger.ErrorField(err))
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	} else if result.ExitCode == strategy.JOB_EXIT_CODE_FAILED {
		response.Code = http.StatusInternalServerError
	}
	return c.JSON(response.Code, response)
}
