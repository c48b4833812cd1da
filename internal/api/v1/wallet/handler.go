package wallet

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// GetBalance godoc
// @Summary Get coin balance
// @Description Returns the authenticated account's coin balance and lifetime totals
// @Tags wallet
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=BalanceResponse}
// @Failure 401 {object} utils.Response
// @Router /wallet [get]
func GetBalance(c *gin.Context) {
	a := c.MustGet("account").(models.Account)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Balance retrieved successfully", BalanceResponse{
		CoinBalance:      a.CoinBalance,
		TotalCoinsEarned: a.TotalCoinsEarned,
		TotalCoinsSpent:  a.TotalCoinsSpent,
	}))
}

// GetLedger godoc
// @Summary Get ledger history
// @Description Returns the authenticated account's ledger entries, newest first
// @Tags wallet
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=LedgerListResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /wallet/ledger [get]
func GetLedger(c *gin.Context) {
	a := c.MustGet("account").(models.Account)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	entries, total, err := services.History(a.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch ledger"))
		return
	}

	items := make([]LedgerEntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LedgerEntryItem{
			ID:                e.ID,
			CreatedAt:         e.CreatedAt,
			Kind:              e.Kind,
			Amount:            e.Amount,
			Feature:           e.Feature,
			ExternalReference: e.ExternalReference,
			BalanceAfter:      e.BalanceAfter,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Ledger retrieved successfully", LedgerListResponse{
		Entries: items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}))
}
