package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/udahili/services/metrics"
)

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			metrics.APIRequestDuration.WithLabelValues(
				ctx.Path(),
				ctx.Request().Method,
				strconv.Itoa(ctx.Response().Status),
			).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
