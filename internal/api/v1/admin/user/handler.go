package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/GodwinAdu/med-pro-sub001/internal/api/v1/account"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// ListAccounts godoc
// @Summary List accounts
// @Description Get a paginated list of accounts. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} utils.Response{data=AccountListResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users [get]
func ListAccounts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid limit number"))
		return
	}

	accounts, total, err := services.FindAccounts(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch accounts"))
		return
	}

	items := make([]account.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, account.FromModel(&accounts[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Accounts retrieved successfully", AccountListResponse{
		Accounts: items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}))
}

// GrantCoins godoc
// @Summary Grant coins to an account
// @Description Credits coins as a bonus or refund, with an audit reason. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Account ID"
// @Param input body GrantCoinsInput true "Grant Input"
// @Success 200 {object} utils.Response{data=GrantCoinsResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/users/{id}/coins [post]
func GrantCoins(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil || accountID < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid account ID"))
		return
	}

	var input GrantCoinsInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	var adminID uint
	if v, ok := c.Get("account"); ok {
		adminID = v.(models.Account).ID
	}
	metadata, _ := json.Marshal(map[string]interface{}{
		"reason":   input.Reason,
		"admin_id": adminID,
	})

	entry, _, err := services.Credit(uint(accountID), input.Coins, models.EntryKind(input.Kind), "admin_grant", nil, datatypes.JSON(metadata))
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Account not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to grant coins"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Coins granted successfully", GrantCoinsResponse{
		AccountID:    uint(accountID),
		Coins:        input.Coins,
		BalanceAfter: entry.BalanceAfter,
	}))
}
