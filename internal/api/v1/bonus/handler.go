package bonus

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

type ClaimResponse struct {
	Coins        int64 `json:"coins"`
	BalanceAfter int64 `json:"balance_after"`
}

// ClaimDaily godoc
// @Summary Claim the daily bonus
// @Description Grants the daily coin bonus, once per calendar day (server time)
// @Tags bonus
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=ClaimResponse}
// @Failure 401 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /bonus/daily [post]
func ClaimDaily(c *gin.Context) {
	a := c.MustGet("account").(models.Account)

	entry, err := services.ClaimDailyBonus(a.ID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyClaimedToday) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Daily bonus already claimed today"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to claim daily bonus"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Daily bonus claimed", ClaimResponse{
		Coins:        entry.Amount,
		BalanceAfter: entry.BalanceAfter,
	}))
}
