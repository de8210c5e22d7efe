package center

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateCenter godoc
// @Summary      Create center
// @Description  Creates a sports center with its schedule configuration. Admin only.
// @Tags         centers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateCenterRequest  true  "Center data"
// @Success      201      {object}  Center
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/centers [post]
func (h *Handler) CreateCenter(c *gin.Context) {
	var req CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone"})
		return
	}

	center, err := h.repo.CreateCenter(c.Request.Context(), req.Name, req.Location, req.Timezone, req.ScheduleConfig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create center"})
		return
	}

	c.JSON(http.StatusCreated, center)
}

// ListCenters godoc
// @Summary      List centers
// @Tags         centers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Center
// @Failure      500  {object}  gin.H
// @Router       /centers [get]
func (h *Handler) ListCenters(c *gin.Context) {
	centers, err := h.repo.GetAllCenters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch centers"})
		return
	}

	c.JSON(http.StatusOK, centers)
}

// GetSchedule godoc
// @Summary      Resolved schedule for a date
// @Description  Returns the open intervals for a center on one calendar date.
// @Tags         centers
// @Security     BearerAuth
// @Produce      json
// @Param        centerID  path      int     true  "Center ID"
// @Param        date      query     string  true  "Date (2006-01-02)"
// @Success      200       {object}  gin.H
// @Failure      400       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Router       /centers/{centerID}/schedule [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	centerID, err := strconv.Atoi(c.Param("centerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid center ID"})
		return
	}

	date, err := time.Parse(dateKeyLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	center, err := h.repo.GetCenterByID(c.Request.Context(), centerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Center not found"})
		return
	}

	intervals := ResolveDay(center.ScheduleConfig, date)
	c.JSON(http.StatusOK, gin.H{
		"center_id": center.ID,
		"date":      date.Format(dateKeyLayout),
		"open":      len(intervals) > 0,
		"intervals": intervals,
	})
}

// UpdateSchedule godoc
// @Summary      Update schedule configuration
// @Tags         centers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        centerID  path      int                    true  "Center ID"
// @Param        request   body      UpdateScheduleRequest  true  "Schedule configuration"
// @Success      200       {object}  gin.H
// @Failure      400       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Router       /admin/centers/{centerID}/schedule [put]
func (h *Handler) UpdateSchedule(c *gin.Context) {
	centerID, err := strconv.Atoi(c.Param("centerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid center ID"})
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.repo.UpdateSchedule(c.Request.Context(), centerID, req.ScheduleConfig)
	if err != nil {
		if errors.Is(err, ErrCenterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Center not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule updated"})
}
