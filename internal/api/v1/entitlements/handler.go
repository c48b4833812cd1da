package entitlements

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/services"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// List godoc
// @Summary List feature entitlements
// @Description Returns every metered feature with its gate mode, cost or limit, and the account's current usage
// @Tags entitlements
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=CatalogResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /entitlements [get]
func List(c *gin.Context) {
	a := c.MustGet("account").(models.Account)
	plan := services.EffectivePlan(&a)

	catalog := services.FeatureCatalog()
	features := make([]FeatureStatus, 0, len(catalog))
	for name, fc := range catalog {
		fs := FeatureStatus{Feature: name, Mode: string(fc.Mode)}
		if fc.Mode == services.GateModeCoin {
			fs.CoinCost = fc.CoinCost
		} else if plan != models.PlanNone {
			limit, ok := fc.MonthlyLimits[plan]
			if !ok {
				limit = fc.MonthlyLimits[models.PlanBasic]
			}
			fs.MonthlyLimit = &limit
			usage, err := services.CurrentUsage(a.ID, name)
			if err != nil {
				c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch usage"))
				return
			}
			fs.CurrentUsage = &usage
		}
		features = append(features, fs)
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Feature < features[j].Feature })

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Entitlements retrieved successfully", CatalogResponse{
		EffectivePlan: string(plan),
		TrialEndsAt:   services.TrialEnd(&a).Format(time.RFC3339),
		Features:      features,
	}))
}

// Check godoc
// @Summary Check access to a feature
// @Description Dry-run access check: reports whether the feature would be granted right now and why not otherwise. Changes nothing.
// @Tags entitlements
// @Produce json
// @Security ApiKeyAuth
// @Param feature path string true "Feature name"
// @Success 200 {object} utils.Response{data=services.Decision}
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /entitlements/{feature} [get]
func Check(c *gin.Context) {
	a := c.MustGet("account").(models.Account)
	feature := c.Param("feature")

	decision, err := services.CheckAccess(a.ID, feature)
	if err != nil {
		if errors.Is(err, services.ErrUnknownFeature) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Unknown feature"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check access"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Access check completed", decision))
}
