package court

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AvailabilityInvalidator drops cached availability answers for a court on a
// given date. Satisfied by availability.Cache.
type AvailabilityInvalidator interface {
	InvalidateCourt(ctx context.Context, courtID int, date time.Time)
}

type Handler struct {
	repo  Repository
	cache AvailabilityInvalidator
}

func NewHandler(db *sqlx.DB, cache AvailabilityInvalidator) *Handler {
	return &Handler{repo: NewRepository(db), cache: cache}
}

// CreateCourt godoc
// @Summary      Create court
// @Description  Creates a court. Courts with allowed secondary sports become multiuse. Admin only.
// @Tags         courts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateCourtRequest  true  "Court data"
// @Success      201      {object}  Court
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/courts [post]
func (h *Handler) CreateCourt(c *gin.Context) {
	var req CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	court, err := h.repo.CreateCourt(c.Request.Context(), req.CenterID, req.Name, req.PrimarySport, req.AllowedSports, req.HourlyRate)
	if err != nil {
		if errors.Is(err, ErrPrimaryInAllowed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create court"})
		return
	}

	c.JSON(http.StatusCreated, court)
}

// ListCourtsByCenter godoc
// @Summary      List courts for a center
// @Tags         courts
// @Security     BearerAuth
// @Produce      json
// @Param        centerID  path      int  true  "Center ID"
// @Success      200       {array}   Court
// @Failure      400       {object}  gin.H
// @Failure      500       {object}  gin.H
// @Router       /centers/{centerID}/courts [get]
func (h *Handler) ListCourtsByCenter(c *gin.Context) {
	centerID, err := strconv.Atoi(c.Param("centerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid center ID"})
		return
	}

	courts, err := h.repo.GetCourtsByCenter(c.Request.Context(), centerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courts"})
		return
	}

	c.JSON(http.StatusOK, courts)
}

// CreateMaintenance godoc
// @Summary      Schedule maintenance window
// @Tags         maintenance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        courtID  path      int                       true  "Court ID"
// @Param        request  body      CreateMaintenanceRequest  true  "Maintenance window"
// @Success      201      {object}  MaintenanceWindow
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/courts/{courtID}/maintenance [post]
func (h *Handler) CreateMaintenance(c *gin.Context) {
	courtID, err := strconv.Atoi(c.Param("courtID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid court ID"})
		return
	}

	var req CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_time, use RFC3339"})
		return
	}

	if _, err := h.repo.GetCourtByID(c.Request.Context(), courtID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Court not found"})
		return
	}

	mw, err := h.repo.CreateMaintenance(c.Request.Context(), courtID, startTime, req.DurationMinutes, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create maintenance window"})
		return
	}

	h.invalidateWindow(c.Request.Context(), courtID, startTime, req.DurationMinutes)

	c.JSON(http.StatusCreated, mw)
}

// UpdateMaintenanceStatus godoc
// @Summary      Update maintenance window status
// @Tags         maintenance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        maintenanceID  path      int    true  "Maintenance window ID"
// @Param        status         query     string true  "New status"
// @Success      200            {object}  gin.H
// @Failure      400            {object}  gin.H
// @Failure      404            {object}  gin.H
// @Router       /admin/maintenance/{maintenanceID} [patch]
func (h *Handler) UpdateMaintenanceStatus(c *gin.Context) {
	maintenanceID, err := strconv.Atoi(c.Param("maintenanceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	status := c.Query("status")
	switch status {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	mw, err := h.repo.UpdateMaintenanceStatus(c.Request.Context(), maintenanceID, status)
	if err != nil {
		if errors.Is(err, ErrMaintenanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Maintenance window not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update maintenance window"})
		return
	}

	h.invalidateWindow(c.Request.Context(), mw.CourtID, mw.StartTime, mw.DurationMinutes)

	c.JSON(http.StatusOK, mw)
}

// SetCourtActive godoc
// @Summary      Activate or deactivate a court
// @Tags         courts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        courtID  path      int   true  "Court ID"
// @Param        request  body      gin.H  true  "{\"active\": true|false}"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /admin/courts/{courtID}/active [patch]
func (h *Handler) SetCourtActive(c *gin.Context) {
	courtID, err := strconv.Atoi(c.Param("courtID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid court ID"})
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.repo.SetCourtActive(c.Request.Context(), courtID, *req.Active); err != nil {
		if errors.Is(err, ErrCourtNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Court not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update court"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Court updated"})
}

// invalidateWindow drops cached availability for every date a maintenance
// window touches.
func (h *Handler) invalidateWindow(ctx context.Context, courtID int, startTime time.Time, durationMinutes int) {
	if h.cache == nil {
		return
	}

	endTime := startTime.Add(time.Duration(durationMinutes) * time.Minute)
	for d := startTime.Truncate(24 * time.Hour); !d.After(endTime); d = d.AddDate(0, 0, 1) {
		h.cache.InvalidateCourt(ctx, courtID, d)
	}
}
