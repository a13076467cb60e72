package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/common"
	"hospitalhub/internal/models"
	"hospitalhub/internal/tenancy"
)

const tenantContextKey = "tenant_db"

// HospitalLookup resolves a hospital by code, typically through the cache.
type HospitalLookup interface {
	Get(ctx context.Context, code string) (*models.Hospital, error)
}

type RBACMiddleware struct {
	hospitals HospitalLookup
}

func NewRBACMiddleware(hospitals HospitalLookup) *RBACMiddleware {
	return &RBACMiddleware{
		hospitals: hospitals,
	}
}

// Require admits the request only when the caller's role holds capability.
// Tenant-scoped capabilities also need an active hospital binding, whose
// database is then available through Tenant.
func (m *RBACMiddleware) Require(capability models.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := CurrentIdentity(c)
			if err != nil {
				return err
			}
			if !identity.Role.Can(capability) {
				return common.Forbidden("insufficient permissions")
			}
			if !capability.TenantScoped() {
				return next(c)
			}

			if !identity.HasTenant() {
				return common.Forbidden("no hospital bound to this session")
			}
			db, err := tenancy.ForTenant(identity.HospitalCode)
			if err != nil {
				return common.Forbidden("invalid hospital binding")
			}
			hospital, err := m.hospitals.Get(c.Request().Context(), identity.HospitalCode)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.Forbidden("hospital does not exist")
				}
				return err
			}
			if !hospital.IsActive {
				return common.Forbidden("hospital is deactivated")
			}

			c.Set(tenantContextKey, db)
			return next(c)
		}
	}
}

// Tenant returns the hospital database resolved by Require.
func Tenant(c echo.Context) (tenancy.Database, error) {
	db, ok := c.Get(tenantContextKey).(tenancy.Database)
	if !ok {
		return tenancy.Database{}, common.Forbidden("no hospital bound to this request")
	}
	return db, nil
}
