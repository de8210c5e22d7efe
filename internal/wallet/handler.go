package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"courtslot/internal/api"
	"courtslot/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// GetWallet godoc
// @Summary      Current credit balance
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  gin.H
// @Failure      500  {object}  gin.H
// @Router       /wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	balance, err := h.repo.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "credits_balance": balance})
}

// GetLedger godoc
// @Summary      Wallet ledger
// @Description  Paginated ledger entries for the authenticated user, newest first.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 50)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   LedgerEntry
// @Failure      500     {object}  gin.H
// @Router       /wallet/ledger [get]
func (h *Handler) GetLedger(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.repo.GetLedger(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// TopUp godoc
// @Summary      Credit a user's wallet
// @Description  Applies a TOPUP ledger entry. Admin only.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopUpRequest  true  "Top-up data"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/wallet/topup [post]
func (h *Handler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	result, err := h.repo.ApplyEntry(c.Request.Context(), ApplyParams{
		UserID:         req.UserID,
		Type:           TypeCredit,
		Reason:         ReasonTopUp,
		Credits:        req.Credits,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if errors.Is(err, ErrInvalidEntry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid top-up"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply top-up"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry":    result.Entry,
		"replayed": result.Replayed,
	})
}
