package middleware

import (
	"github.com/labstack/echo/v4"
)

const APIVersionHeader = "X-API-Version"

// VersionHeader stamps every response with the API and build version.
func VersionHeader(apiVersion, build string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(APIVersionHeader, apiVersion)
			if build != "" {
				h.Set("X-Build-Version", build)
			}
			return next(c)
		}
	}
}
