package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// FromModel maps an account record to its API representation.
func FromModel(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:                    a.ID,
		Email:                 a.Email,
		Role:                  a.Role,
		CoinBalance:           a.CoinBalance,
		TotalCoinsEarned:      a.TotalCoinsEarned,
		TotalCoinsSpent:       a.TotalCoinsSpent,
		SubscriptionPlan:      string(a.SubscriptionPlan),
		SubscriptionStartDate: a.SubscriptionStartDate,
		SubscriptionEndDate:   a.SubscriptionEndDate,
		ReferralCode:          a.ReferralCode,
		ReferralCount:         a.ReferralCount,
		TrialEndsAt:           services.TrialEnd(a),
		CreatedAt:             a.CreatedAt,
	}
}

// Me godoc
// @Summary Get the current account
// @Description Returns the authenticated account's profile, coin balance and subscription state
// @Tags account
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=AccountResponse}
// @Failure 401 {object} utils.Response
// @Router /account/me [get]
func Me(c *gin.Context) {
	a := c.MustGet("account").(models.Account)
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Account retrieved successfully", FromModel(&a)))
}
