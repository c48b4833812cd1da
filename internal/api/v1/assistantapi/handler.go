// Package assistantapi exposes the metered assistant features. Every
// handler follows the same order: check access, run the completion, commit
// the charge. A denied check returns before any provider call is made.
package assistantapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/assistant"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

func denialStatus(reason services.DenialReason) int {
	switch reason {
	case services.ReasonInsufficientCoins:
		return http.StatusPaymentRequired
	case services.ReasonLimitReached:
		return http.StatusTooManyRequests
	default: // trial expired
		return http.StatusForbidden
	}
}

func runFeature(c *gin.Context, feature string, messages []assistant.Message) {
	a := c.MustGet("account").(models.Account)

	result, err := services.RunAssistantFeature(c.Request.Context(), a.ID, feature, messages)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, "Assistant is temporarily unavailable"))
		return
	}

	if result.Denied != nil {
		status := denialStatus(result.Denied.Reason)
		c.JSON(status, utils.NewResponse(status, "Access denied: "+string(result.Denied.Reason), result.Denied))
		return
	}

	reply := ReplyResponse{
		Content:    result.Reply.Content,
		TokensUsed: result.Reply.TotalTokens,
	}
	if result.Entry != nil {
		reply.CoinsCharged = -result.Entry.Amount
		balance := result.Entry.BalanceAfter
		reply.BalanceAfter = &balance
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Completed successfully", reply))
}

// Chat godoc
// @Summary Medical chat
// @Description Multi-turn chat with the medical assistant. Charges coins per message.
// @Tags assistant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body ChatInput true "Chat Input"
// @Success 200 {object} utils.Response{data=ReplyResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 402 {object} utils.Response{data=services.Decision}
// @Failure 502 {object} utils.Response
// @Router /assistant/chat [post]
func Chat(c *gin.Context) {
	var input ChatInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	messages := make([]assistant.Message, 0, len(input.Messages))
	for _, m := range input.Messages {
		messages = append(messages, assistant.Message{Role: m.Role, Content: m.Content})
	}
	runFeature(c, services.FeatureChat, messages)
}

// DrugLookup godoc
// @Summary Drug information lookup
// @Description Looks up structured drug information. Charges coins per lookup.
// @Tags assistant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body QueryInput true "Drug name or question"
// @Success 200 {object} utils.Response{data=ReplyResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 402 {object} utils.Response{data=services.Decision}
// @Failure 502 {object} utils.Response
// @Router /assistant/drug-lookup [post]
func DrugLookup(c *gin.Context) {
	var input QueryInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	runFeature(c, services.FeatureDrugLookup, []assistant.Message{{Role: "user", Content: input.Query}})
}

// Prescription godoc
// @Summary Prescription draft
// @Description Drafts a prescription for clinician review. Charges coins per draft.
// @Tags assistant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body QueryInput true "Patient and medication details"
// @Success 200 {object} utils.Response{data=ReplyResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 402 {object} utils.Response{data=services.Decision}
// @Failure 502 {object} utils.Response
// @Router /assistant/prescription [post]
func Prescription(c *gin.Context) {
	var input QueryInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	runFeature(c, services.FeaturePrescription, []assistant.Message{{Role: "user", Content: input.Query}})
}

// Diagnosis godoc
// @Summary Differential diagnosis
// @Description Generates ranked differentials. Counted against the plan's monthly quota.
// @Tags assistant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body QueryInput true "Symptoms and history"
// @Success 200 {object} utils.Response{data=ReplyResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response{data=services.Decision}
// @Failure 429 {object} utils.Response{data=services.Decision}
// @Failure 502 {object} utils.Response
// @Router /assistant/diagnosis [post]
func Diagnosis(c *gin.Context) {
	var input QueryInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	runFeature(c, services.FeatureDiagnosis, []assistant.Message{{Role: "user", Content: input.Query}})
}

// CarePlan godoc
// @Summary Care plan generation
// @Description Generates a structured care plan. Counted against the plan's monthly quota.
// @Tags assistant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body QueryInput true "Condition and context"
// @Success 200 {object} utils.Response{data=ReplyResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 403 {object} utils.Response{data=services.Decision}
// @Failure 429 {object} utils.Response{data=services.Decision}
// @Failure 502 {object} utils.Response
// @Router /assistant/care-plan [post]
func CarePlan(c *gin.Context) {
	var input QueryInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	runFeature(c, services.FeatureCarePlan, []assistant.Message{{Role: "user", Content: input.Query}})
}
