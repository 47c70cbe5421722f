package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/codicehealth/codice-inventory/backend-go/internal/cache"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/service"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

// IntelligenceHandler serves the analytics endpoints.
type IntelligenceHandler struct {
	store           store.Store
	recommendations *service.RecommendationService
	redistribution  *service.RedistributionService
	dashboard       *service.DashboardService
	expiry          *service.ExpiryService
	forecast        *service.ForecastService
}

func NewIntelligenceHandler(
	st store.Store,
	recommendations *service.RecommendationService,
	redistribution *service.RedistributionService,
	dashboard *service.DashboardService,
	expiry *service.ExpiryService,
	forecast *service.ForecastService,
) *IntelligenceHandler {
	return &IntelligenceHandler{
		store:           st,
		recommendations: recommendations,
		redistribution:  redistribution,
		dashboard:       dashboard,
		expiry:          expiry,
		forecast:        forecast,
	}
}

// branchParam parses the :branch_id path segment.
func branchParam(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("branch_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, http.StatusBadRequest, "invalid branch id: "+raw)
		return 0, false
	}
	return id, true
}

// tenantFromAuth extracts the role claim from a bearer token, if one is
// present. The token is never verified here; the claim is only echoed into
// report metadata.
func tenantFromAuth(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ""
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}

	var claims struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}
	return claims.Role
}

// lookbackQuery parses an optional lookback query parameter in days.
// Missing or unparseable values yield 0, which services treat as the
// configured default.
func lookbackQuery(c *gin.Context) int {
	raw := strings.TrimSpace(c.Query("lookback"))
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0
	}
	return days
}

// optionalBranchQuery parses an optional branch_id query parameter,
// defaulting to 0 (all branches).
func optionalBranchQuery(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Query("branch_id"))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		errorResponse(c, http.StatusBadRequest, "invalid branch id: "+raw)
		return 0, false
	}
	return id, true
}

// GetRecommendations returns purchase recommendations for one branch.
func (h *IntelligenceHandler) GetRecommendations(c *gin.Context) {
	branchID, ok := branchParam(c)
	if !ok {
		return
	}

	if _, found, err := h.findBranch(c.Request.Context(), branchID); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load branches: "+err.Error())
		return
	} else if !found {
		errorResponse(c, http.StatusNotFound, "branch not found")
		return
	}

	report, err := h.recommendations.RecommendationsSince(c.Request.Context(), branchID, lookbackQuery(c))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to generate recommendations: "+err.Error())
		return
	}
	report.Metadata.Tenant = tenantFromAuth(c)
	c.JSON(http.StatusOK, report)
}

// GetRedistribution returns transfer opportunities across the network.
func (h *IntelligenceHandler) GetRedistribution(c *gin.Context) {
	report, err := h.redistribution.Redistribution(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to analyze redistribution: "+err.Error())
		return
	}
	report.Metadata.Tenant = tenantFromAuth(c)
	c.JSON(http.StatusOK, report)
}

// GetConsolidatedDashboard returns the all-branch health view.
func (h *IntelligenceHandler) GetConsolidatedDashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Consolidated(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to build dashboard: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetBranchDashboard returns the health view for one branch.
func (h *IntelligenceHandler) GetBranchDashboard(c *gin.Context) {
	branchID, ok := branchParam(c)
	if !ok {
		return
	}

	branch, found, err := h.findBranch(c.Request.Context(), branchID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load branches: "+err.Error())
		return
	}
	if !found {
		errorResponse(c, http.StatusNotFound, "branch not found")
		return
	}

	analytics, err := h.dashboard.BranchAnalytics(c.Request.Context(), branch)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to analyze branch: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// GetExpiryAlerts returns expiry alerts, optionally scoped to a branch.
func (h *IntelligenceHandler) GetExpiryAlerts(c *gin.Context) {
	branchID, ok := optionalBranchQuery(c)
	if !ok {
		return
	}

	report, err := h.expiry.Alerts(c.Request.Context(), branchID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to generate expiry alerts: "+err.Error())
		return
	}
	report.Metadata.Tenant = tenantFromAuth(c)
	c.JSON(http.StatusOK, report)
}

// GetForecast returns multi-horizon demand projections, optionally scoped
// to a branch.
func (h *IntelligenceHandler) GetForecast(c *gin.Context) {
	branchID, ok := optionalBranchQuery(c)
	if !ok {
		return
	}

	report, err := h.forecast.Projections(c.Request.Context(), branchID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to generate forecast: "+err.Error())
		return
	}
	report.Metadata.Tenant = tenantFromAuth(c)
	c.JSON(http.StatusOK, report)
}

// InvalidateCache drops every cached store entry.
func (h *IntelligenceHandler) InvalidateCache(c *gin.Context) {
	if err := cache.Invalidate(c.Request.Context(), h.store); err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to invalidate cache: "+err.Error())
		return
	}
	log.Info().Msg("store cache invalidated")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *IntelligenceHandler) findBranch(ctx context.Context, branchID int64) (domain.Branch, bool, error) {
	branches, err := h.store.Branches(ctx)
	if err != nil {
		return domain.Branch{}, false, err
	}
	for _, b := range branches {
		if b.ID == branchID {
			return b, true, nil
		}
	}
	return domain.Branch{}, false, nil
}
