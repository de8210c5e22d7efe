package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtslot/internal/api"
	"courtslot/internal/auth"
	"courtslot/internal/promotion"
	"courtslot/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateReservation godoc
// @Summary      Create a pending reservation
// @Description  Holds a slot on a court. The reservation stays pending until paid.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateReservationRequest  true  "Reservation data"
// @Success      201      {object}  Reservation
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /reservations [post]
func (h *Handler) CreateReservation(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is not available"})
		case errors.Is(err, ErrCourtNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Court not found"})
		case errors.Is(err, ErrCourtInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Court is not active"})
		case errors.Is(err, ErrSportNotSupported):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sport is not supported on this court"})
		case errors.Is(err, ErrOutsideHours):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Requested time is outside open hours"})
		case errors.Is(err, ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Pay godoc
// @Summary      Pay a pending reservation
// @Description  Settles payment with credits, card, or a zero-cost promotion. Retries with the same idempotency key return the original outcome.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reservationID  path      int         true  "Reservation ID"
// @Param        request        body      PayRequest  true  "Payment data"
// @Success      200            {object}  PaymentResponse
// @Failure      400            {object}  api.AmountMismatchResponse
// @Failure      402            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID}/pay [post]
func (h *Handler) Pay(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	resp, err := h.service.ProcessPayment(c.Request.Context(), PaymentRequest{
		ReservationID:  reservationID,
		UserID:         userID,
		Method:         req.PaymentMethod,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		AppliedPromo:   req.AppliedPromo,
	})
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writePaymentError(c *gin.Context, err error) {
	var mismatch *AmountMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusBadRequest, api.AmountMismatchResponse{
			Error:    "amount mismatch",
			Expected: mismatch.Expected,
			Provided: mismatch.Provided,
		})
		return
	}

	switch {
	case errors.Is(err, ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Reservation belongs to another user"})
	case errors.Is(err, ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation cannot be paid in its current state"})
	case errors.Is(err, ErrPromotionRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Free payment requires a zero-cost promotion"})
	case errors.Is(err, promotion.ErrPromotionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
	case errors.Is(err, promotion.ErrPromotionInactive),
		errors.Is(err, promotion.ErrPromotionExpired),
		errors.Is(err, promotion.ErrNotDiscountType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion cannot be applied"})
	case errors.Is(err, promotion.ErrUsageLimitExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion usage limit exceeded"})
	case errors.Is(err, wallet.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient credits"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
	}
}

// Cancel godoc
// @Summary      Cancel a reservation
// @Description  Cancels a pending or paid reservation. Credit payments are refunded to the wallet.
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  api.MessageResponse
// @Failure      400            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, reservationID); err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Reservation belongs to another user"})
		case errors.Is(err, ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation cannot be cancelled in its current state"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel reservation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

// GetMyReservations godoc
// @Summary      Authenticated user's reservations
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Reservation
// @Failure      500  {object}  api.ErrorResponse
// @Router       /reservations [get]
func (h *Handler) GetMyReservations(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reservations, err := h.service.GetUserReservations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetReservation godoc
// @Summary      Get a single reservation
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  Reservation
// @Failure      403            {object}  gin.H
// @Failure      404            {object}  gin.H
// @Router       /reservations/{reservationID} [get]
func (h *Handler) GetReservation(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	r, err := h.service.Get(c.Request.Context(), userID, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Reservation belongs to another user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservation"})
		}
		return
	}

	c.JSON(http.StatusOK, r)
}

// GetCourtReservations godoc
// @Summary      Reservations for a court on one date
// @Description  Admin only.
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        courtID  path      int     true  "Court ID"
// @Param        date     query     string  true  "Date (YYYY-MM-DD)"
// @Success      200      {array}   Reservation
// @Failure      400      {object}  api.ErrorResponse
// @Router       /admin/courts/{courtID}/reservations [get]
func (h *Handler) GetCourtReservations(c *gin.Context) {
	courtID, err := strconv.Atoi(c.Param("courtID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid court ID"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	reservations, err := h.service.GetByCourtDate(c.Request.Context(), courtID, date, date.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}
