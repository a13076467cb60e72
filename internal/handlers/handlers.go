package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/middleware"
	"hospitalhub/internal/tenancy"
)

// bindRequest decodes the request into req. Decoding failures are client errors.
func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return nil
}

// tenantScope returns the database bound by the RBAC middleware together with
// the caller's identity.
func tenantScope(c echo.Context) (tenancy.Database, common.Identity, error) {
	db, err := middleware.Tenant(c)
	if err != nil {
		return tenancy.Database{}, common.Identity{}, err
	}
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return tenancy.Database{}, common.Identity{}, err
	}
	return db, identity, nil
}
