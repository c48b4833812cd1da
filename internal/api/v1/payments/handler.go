package payments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/payment/paystack"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

func toResponse(o *services.SettlementOutcome) SettlementResponse {
	return SettlementResponse{
		Kind:           o.Kind,
		Reference:      o.Reference,
		AccountID:      o.AccountID,
		Coins:          o.Coins,
		Plan:           string(o.Plan),
		DurationMonths: o.DurationMonths,
		AlreadySettled: o.AlreadySettled,
	}
}

// Webhook godoc
// @Summary Paystack webhook
// @Description Receives charge events from Paystack. Authenticated by the HMAC signature header, not a bearer token. A non-2xx status makes the provider redeliver, so storage failures return 500 on purpose.
// @Tags payments
// @Accept json
// @Produce json
// @Param x-paystack-signature header string true "HMAC-SHA512 signature of the raw body"
// @Success 200 {object} utils.Response{data=SettlementResponse}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /payments/webhook [post]
func Webhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Failed to read request body"))
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)

	outcome, err := services.HandlePaymentWebhook(rawBody, signature)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid signature"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to process event"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Event processed", toResponse(outcome)))
}

// Verify godoc
// @Summary Verify a payment by reference
// @Description Settles a charge the client reports directly, for when the webhook is delayed. The charge must belong to the requesting account. Safe to call repeatedly.
// @Tags payments
// @Produce json
// @Security ApiKeyAuth
// @Param reference path string true "Provider transaction reference"
// @Success 200 {object} utils.Response{data=SettlementResponse}
// @Failure 401 {object} utils.Response
// @Failure 402 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /payments/verify/{reference} [get]
func Verify(c *gin.Context) {
	a := c.MustGet("account").(models.Account)
	reference := c.Param("reference")

	outcome, err := services.HandleManualVerify(c.Request.Context(), reference, a.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationFailed):
			c.JSON(http.StatusPaymentRequired, utils.NewErrorResponse(http.StatusPaymentRequired, "Transaction could not be verified"))
		case errors.Is(err, services.ErrMetadataMismatch):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Transaction does not belong to this account"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Verification is temporarily unavailable, try again"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transaction verified", toResponse(outcome)))
}
