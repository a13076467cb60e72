package handlers

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hospitalhub/internal/middleware"
	"hospitalhub/internal/models"
)

// Handlers groups every HTTP handler set served by the API.
type Handlers struct {
	Auth       *AuthHandlers
	Beds       *BedHandlers
	Patients   *PatientHandlers
	Claims     *ClaimHandlers
	Documents  *DocumentHandlers
	Activities *ActivityHandlers
	Users      *UserHandlers
	Hospitals  *HospitalHandlers
	Stats      *StatsHandlers
	Health     *HealthHandlers
}

// RegisterRoutes mounts the API on e. session authenticates requests and
// rbac authorizes them per route before any handler runs.
func RegisterRoutes(e *echo.Echo, h Handlers, session echo.MiddlewareFunc, rbac *middleware.RBACMiddleware) {
	// Health endpoints (no auth required)
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/health/detailed", h.Health.DetailedHealthCheck)
	e.GET("/health/ready", h.Health.ReadinessCheck)
	e.GET("/health/live", h.Health.LivenessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout, session)
	auth.GET("/session", h.Auth.Session, session)

	protected := api.Group("")
	protected.Use(session)

	read := rbac.Require(models.CapTenantRead)
	write := rbac.Require(models.CapTenantWrite)

	protected.GET("/beds", h.Beds.ListBeds, read)
	protected.POST("/beds", h.Beds.CreateBed, write)
	protected.PUT("/beds", h.Beds.UpdateBed, write)
	protected.POST("/beds/assign", h.Beds.AssignBed, write)

	protected.GET("/patients", h.Patients.ListPatients, read)
	protected.GET("/patients/search", h.Patients.SearchPatient, read)
	protected.POST("/patients", h.Patients.CreatePatient, write)
	protected.PUT("/patients", h.Patients.UpdatePatient, write)
	protected.POST("/patients/discharge", h.Patients.DischargePatient, write)
	protected.POST("/patients/readmit", h.Patients.ReadmitPatient, write)

	protected.GET("/claims", h.Claims.ListClaims, read)
	protected.POST("/claims", h.Claims.CreateClaim, write)
	protected.PUT("/claims", h.Claims.UpdateClaim, write)

	protected.GET("/documents", h.Documents.ListDocuments, read)
	protected.POST("/documents", h.Documents.UploadDocument, write)
	protected.PUT("/documents", h.Documents.UpdateDocument, write)
	protected.GET("/documents/:id/download", h.Documents.DownloadDocument, read)

	protected.GET("/activities", h.Activities.ListActivities, read)
	protected.POST("/activities", h.Activities.CreateActivity, write)

	manageUsers := rbac.Require(models.CapUsersManage)
	protected.GET("/users", h.Users.ListUsers, manageUsers)
	protected.POST("/users", h.Users.CreateUser, manageUsers)
	protected.PUT("/users", h.Users.UpdateUser, manageUsers)
	protected.PATCH("/users", h.Users.ChangeUserRole, manageUsers)
	protected.DELETE("/users", h.Users.DeactivateUser, manageUsers)

	manageHospitals := rbac.Require(models.CapHospitalsManage)
	protected.GET("/hospitals", h.Hospitals.ListHospitals, rbac.Require(models.CapHospitalsRead))
	protected.POST("/hospitals", h.Hospitals.CreateHospital, manageHospitals)
	protected.PUT("/hospitals", h.Hospitals.UpdateHospital, manageHospitals)
	protected.DELETE("/hospitals", h.Hospitals.DeactivateHospital, manageHospitals)

	protected.GET("/stats", h.Stats.GetStats, rbac.Require(models.CapStatsRead))
}
