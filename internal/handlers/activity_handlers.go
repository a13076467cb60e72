package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hospitalhub/internal/services"
)

// ActivityHandlers serves the tenant activity feed.
type ActivityHandlers struct {
	activities services.ActivityService
}

func NewActivityHandlers(activities services.ActivityService) *ActivityHandlers {
	return &ActivityHandlers{activities: activities}
}

type CreateActivityRequest struct {
	Action      string  `json:"action"`
	Description *string `json:"description"`
	EntityType  *string `json:"entityType"`
	ReferenceID *string `json:"referenceId"`
}

// ListActivities handles GET /api/activities, newest first.
func (h *ActivityHandlers) ListActivities(c echo.Context) error {
	db, _, err := tenantScope(c)
	if err != nil {
		return err
	}
	activities, err := h.activities.ListRecent(c.Request().Context(), db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activities)
}

// CreateActivity handles POST /api/activities
func (h *ActivityHandlers) CreateActivity(c echo.Context) error {
	db, identity, err := tenantScope(c)
	if err != nil {
		return err
	}

	var req CreateActivityRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	activity, err := h.activities.Create(c.Request().Context(), db, services.CreateActivityInput{
		Action:      req.Action,
		Description: req.Description,
		EntityType:  req.EntityType,
		ReferenceID: req.ReferenceID,
	}, identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, activity)
}
