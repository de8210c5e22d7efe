package promotion

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"courtslot/internal/api"
	"courtslot/internal/auth"
	"courtslot/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, walletRepo wallet.Repository) *Handler {
	return &Handler{service: NewService(db, NewRepository(db), walletRepo)}
}

// Apply godoc
// @Summary      Apply a promotion
// @Description  Grants the promotion's reward to the authenticated user's wallet.
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        promotionID  path      int           true   "Promotion ID"
// @Param        request      body      ApplyRequest  false  "Amount and metadata"
// @Success      200          {object}  ApplyResult
// @Failure      400          {object}  gin.H
// @Failure      404          {object}  gin.H
// @Failure      500          {object}  gin.H
// @Router       /promotions/{promotionID}/apply [post]
func (h *Handler) Apply(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	promotionID, err := strconv.Atoi(c.Param("promotionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion ID"})
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.Apply(c.Request.Context(), promotionID, userID, req)
	if err != nil {
		h.writeApplyError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeApplyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPromotionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
	case errors.Is(err, ErrPromotionInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion is not active"})
	case errors.Is(err, ErrPromotionExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion has expired"})
	case errors.Is(err, ErrUsageLimitExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion usage limit exceeded"})
	case errors.Is(err, ErrAlreadyUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion already used"})
	case errors.Is(err, ErrMissingAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion requires an amount"})
	case errors.Is(err, ErrConditionsNotMet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion conditions not met"})
	case errors.Is(err, ErrNotBonusType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Promotion cannot be applied directly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply promotion"})
	}
}

// ListActive godoc
// @Summary      Active promotions
// @Tags         promotions
// @Produce      json
// @Success      200  {array}   Promotion
// @Failure      500  {object}  gin.H
// @Router       /promotions/active [get]
func (h *Handler) ListActive(c *gin.Context) {
	promos, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promotions"})
		return
	}

	c.JSON(http.StatusOK, promos)
}

// CreatePromotion godoc
// @Summary      Create a promotion
// @Description  Admin only.
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePromotionRequest  true  "Promotion data"
// @Success      201      {object}  Promotion
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/promotions [post]
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	promo, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promotion"})
		return
	}

	c.JSON(http.StatusCreated, promo)
}

// SetStatus godoc
// @Summary      Activate or deactivate a promotion
// @Description  Admin only.
// @Tags         promotions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        promotionID  path      int    true  "Promotion ID"
// @Param        request      body      gin.H  true  "{\"status\": \"active|inactive\"}"
// @Success      200          {object}  gin.H
// @Failure      400          {object}  gin.H
// @Failure      404          {object}  gin.H
// @Router       /admin/promotions/{promotionID}/status [patch]
func (h *Handler) SetStatus(c *gin.Context) {
	promotionID, err := strconv.Atoi(c.Param("promotionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active inactive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), promotionID, req.Status); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update promotion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promotion updated"})
}
