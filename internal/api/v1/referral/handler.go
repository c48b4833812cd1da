package referral

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

type RedeemInput struct {
	Code string `json:"code" binding:"required"`
}

type RedeemResponse struct {
	ReferrerBonus int64 `json:"referrer_bonus"`
	WelcomeBonus  int64 `json:"welcome_bonus"`
}

type StatusResponse struct {
	ReferralCode  string `json:"referral_code"`
	ReferralCount int    `json:"referral_count"`
	Redeemed      bool   `json:"redeemed"`
}

// Status godoc
// @Summary Get the caller's referral status
// @Description Returns the account's own referral code, how many accounts it has referred, and whether it has already redeemed a code.
// @Tags referral
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=StatusResponse}
// @Failure 401 {object} utils.Response
// @Router /referral [get]
func Status(c *gin.Context) {
	a := c.MustGet("account").(models.Account)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Referral status retrieved successfully", StatusResponse{
		ReferralCode:  a.ReferralCode,
		ReferralCount: a.ReferralCount,
		Redeemed:      a.ReferredBy != nil,
	}))
}

// Redeem godoc
// @Summary Redeem a referral code
// @Description Links the authenticated account to the code's owner and pays both bonuses. Each account may redeem at most one code, ever.
// @Tags referral
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body RedeemInput true "Redeem Input"
// @Success 200 {object} utils.Response{data=RedeemResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /referral/redeem [post]
func Redeem(c *gin.Context) {
	var input RedeemInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	a := c.MustGet("account").(models.Account)

	result, err := services.RedeemReferralCode(a.ID, input.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCode):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Referral code not found"))
		case errors.Is(err, services.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "You cannot redeem your own referral code"))
		case errors.Is(err, services.ErrAlreadyRedeemed):
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "A referral code has already been redeemed on this account"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to redeem referral code"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Referral code redeemed successfully", RedeemResponse{
		ReferrerBonus: result.ReferrerBonus,
		WelcomeBonus:  result.WelcomeBonus,
	}))
}
