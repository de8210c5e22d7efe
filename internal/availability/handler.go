package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtslot/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAvailability godoc
// @Summary      Court availability
// @Description  Returns candidate slots for a court, date and duration, each marked with its availability status.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        courtID           path      int     true   "Court ID"
// @Param        date              query     string  true   "Date (2006-01-02)"
// @Param        duration_minutes  query     int     false  "Requested duration in minutes (default 60)"
// @Param        sport             query     string  true   "Requested sport"
// @Success      200  {object}  AvailabilityResponse
// @Failure      400  {object}  gin.H
// @Failure      404  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /courts/{courtID}/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	courtID, err := strconv.Atoi(c.Param("courtID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid court ID"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use YYYY-MM-DD"})
		return
	}

	durationMinutes := 60
	if raw := c.Query("duration_minutes"); raw != "" {
		durationMinutes, err = strconv.Atoi(raw)
		if err != nil || durationMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration_minutes"})
			return
		}
	}

	sport := c.Query("sport")
	if sport == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sport query param is required"})
		return
	}

	resp, err := h.service.GetAvailability(c.Request.Context(), AvailabilityRequest{
		CourtID:         courtID,
		UserID:          userID,
		Sport:           sport,
		Date:            date,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCourtNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Court not found"})
		case errors.Is(err, ErrCourtInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Court is not active"})
		case errors.Is(err, ErrSportNotSupported):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sport is not supported on this court"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute availability"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
