package ledger

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

func parseFilter(c *gin.Context) (services.LedgerFilter, bool) {
	filter := services.LedgerFilter{Page: 1, Limit: 20}

	if accountIDStr, exists := c.GetQuery("account_id"); exists {
		accountID, err := strconv.Atoi(accountIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid account_id"))
			return filter, false
		}
		aid := uint(accountID)
		filter.AccountID = &aid
	}

	if kindStr, exists := c.GetQuery("kind"); exists {
		k := models.EntryKind(kindStr)
		filter.Kind = &k
	}

	if featureStr, exists := c.GetQuery("feature"); exists {
		filter.Feature = &featureStr
	}

	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid start_time format"))
			return filter, false
		}
		filter.StartTime = &startTime
	}

	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid end_time format"))
			return filter, false
		}
		filter.EndTime = &endTime
	}

	if minAmountStr, exists := c.GetQuery("min_amount"); exists {
		minAmount, err := strconv.ParseInt(minAmountStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid min_amount"))
			return filter, false
		}
		filter.MinAmount = &minAmount
	}

	if maxAmountStr, exists := c.GetQuery("max_amount"); exists {
		maxAmount, err := strconv.ParseInt(maxAmountStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid max_amount"))
			return filter, false
		}
		filter.MaxAmount = &maxAmount
	}

	return filter, true
}

// ListLedger godoc
// @Summary List ledger entries
// @Description Get a paginated, filterable view of the full coin ledger. Admin only.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param account_id query int false "Filter by account ID"
// @Param kind query string false "Filter by entry kind (purchase, usage, bonus, refund)"
// @Param feature query string false "Filter by feature"
// @Param start_time query string false "Filter by start time (RFC3339)"
// @Param end_time query string false "Filter by end time (RFC3339)"
// @Param min_amount query int false "Filter by minimum amount"
// @Param max_amount query int false "Filter by maximum amount"
// @Success 200 {object} utils.Response{data=LedgerListResponse}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/ledger [get]
func ListLedger(c *gin.Context) {
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

	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Page = page
	filter.Limit = limit

	entries, total, err := services.FindLedgerEntries(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch ledger entries"))
		return
	}

	items := make([]LedgerListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LedgerListItem{
			ID:                e.ID,
			CreatedAt:         e.CreatedAt,
			AccountID:         e.AccountID,
			Kind:              e.Kind,
			Amount:            e.Amount,
			Feature:           e.Feature,
			ExternalReference: e.ExternalReference,
			BalanceAfter:      e.BalanceAfter,
			Hash:              e.Hash,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Ledger entries retrieved successfully", LedgerListResponse{
		Entries: items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}))
}

// ExportLedger godoc
// @Summary Export ledger entries
// @Description Export filtered ledger entries to CSV. Admin only.
// @Tags admin
// @Produce text/csv
// @Security ApiKeyAuth
// @Param account_id query int false "Filter by account ID"
// @Param kind query string false "Filter by entry kind"
// @Param feature query string false "Filter by feature"
// @Param start_time query string false "Filter by start time (RFC3339)"
// @Param end_time query string false "Filter by end time (RFC3339)"
// @Success 200 {string} string "CSV content"
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /admin/ledger/export [get]
func ExportLedger(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Page = 1
	filter.Limit = 10000 // Hard limit for safety

	entries, _, err := services.FindLedgerEntries(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch ledger entries"))
		return
	}

	csvContent, err := services.GenerateLedgerCSV(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("ledger_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", csvContent)
}
