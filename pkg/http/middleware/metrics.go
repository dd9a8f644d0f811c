package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "ecogw/pkg/logger"
)

// RequestObserver receives one observation per served request.
type RequestObserver interface {
	ObserveHTTPRequest(route, method string, status int, seconds float64)
}

// Metrics records request metrics labelled by the route template, keeping cardinality low.
// Requests slower than slowThreshold are logged as warnings.
func Metrics(obs RequestObserver, l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			dur := time.Since(start)
			obs.ObserveHTTPRequest(route, method, c.Response().Status, dur.Seconds())

			if slowThreshold > 0 && dur >= slowThreshold {
				l.Warn("http request slow",
					applogger.String("route", route),
					applogger.String("method", method),
					applogger.Duration("duration_ms", dur),
				)
			}
			return nil
		}
	}
}
