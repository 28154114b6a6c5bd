// internal/handlers/coldlist/coldlist_handler.go
package coldlist

import (
	"net/http"
	"strconv"
	"time"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/middleware"
	"coldlist-service/internal/pkg/response"
	service "coldlist-service/internal/service/coldlist"

	"github.com/gin-gonic/gin"
)

type ColdListHandler struct {
	coldListService *service.ColdListService
}

func NewColdListHandler(coldListService *service.ColdListService) *ColdListHandler {
	return &ColdListHandler{
		coldListService: coldListService,
	}
}

// ========== Campaign Lifecycle ==========

// CreateColdList creates an empty cold list owned by the caller
func (h *ColdListHandler) CreateColdList(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}

	var req coldlist.CreateColdListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.coldListService.CreateColdList(c.Request.Context(), identityID, &req)
	if err != nil {
		response.FromError(c, "failed to create cold list", err)
		return
	}

	response.Success(c, http.StatusCreated, "cold list created successfully", result)
}

// ListColdLists lists the caller's cold lists
func (h *ColdListHandler) ListColdLists(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}

	var filters coldlist.ColdListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.coldListService.ListColdLists(c.Request.Context(), identityID, &filters)
	if err != nil {
		response.FromError(c, "failed to list cold lists", err)
		return
	}

	response.Success(c, http.StatusOK, "cold lists retrieved", result)
}

func (h *ColdListHandler) GetColdList(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.coldListService.GetColdList(c.Request.Context(), id, identityID)
	if err != nil {
		response.FromError(c, "failed to get cold list", err)
		return
	}

	response.Success(c, http.StatusOK, "cold list retrieved", result)
}

// ImportClients replaces the leads of a cold list
func (h *ColdListHandler) ImportClients(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req coldlist.ImportClientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.coldListService.ImportClients(c.Request.Context(), id, identityID, req.Clients)
	if err != nil {
		response.FromError(c, "failed to import clients", err)
		return
	}

	response.Success(c, http.StatusOK, "clients imported successfully", result)
}

// GenerateTasks distributes the leads and creates one task per vendor and day
func (h *ColdListHandler) GenerateTasks(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.coldListService.GenerateTasks(c.Request.Context(), id, identityID)
	if err != nil {
		response.FromError(c, "failed to generate tasks", err)
		return
	}

	response.Success(c, http.StatusOK, "tasks generated successfully", result)
}

func (h *ColdListHandler) Redistribute(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.coldListService.Redistribute(c.Request.Context(), id, identityID)
	if err != nil {
		response.FromError(c, "failed to redistribute clients", err)
		return
	}

	response.Success(c, http.StatusOK, "clients redistributed successfully", result)
}

func (h *ColdListHandler) CancelColdList(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.coldListService.CancelColdList(c.Request.Context(), id, identityID); err != nil {
		response.FromError(c, "failed to cancel cold list", err)
		return
	}

	response.Success(c, http.StatusOK, "cold list cancelled successfully", nil)
}

func (h *ColdListHandler) DeleteColdList(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.coldListService.DeleteColdList(c.Request.Context(), id, identityID); err != nil {
		response.FromError(c, "failed to delete cold list", err)
		return
	}

	response.Success(c, http.StatusOK, "cold list deleted successfully", nil)
}

// ========== Contact Tracking ==========

// ContactClient marks or unmarks a lead as contacted
func (h *ColdListHandler) ContactClient(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req coldlist.ContactClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.coldListService.SetContacted(c.Request.Context(), id, *req.ClientIndex, *req.Contacted, identityID)
	if err != nil {
		response.FromError(c, "failed to update client", err)
		return
	}

	response.Success(c, http.StatusOK, "client updated successfully", result)
}

// ========== Reporting ==========

// GetDailyContacts returns the leads of one day, ?date=YYYY-MM-DD (default today)
func (h *ColdListHandler) GetDailyContacts(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	day, err := h.coldListService.ParseDay(c.Query("date"))
	if err != nil {
		response.FromError(c, "invalid date", err)
		return
	}

	result, err := h.coldListService.GetDailyContacts(c.Request.Context(), id, day, identityID)
	if err != nil {
		response.FromError(c, "failed to get daily contacts", err)
		return
	}

	response.Success(c, http.StatusOK, "daily contacts retrieved", result)
}

// GetVendorStats reports contact progress per vendor; without ?date it covers every day
func (h *ColdListHandler) GetVendorStats(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}

	var day *time.Time
	if v := c.Query("date"); v != "" {
		parsed, err := h.coldListService.ParseDay(v)
		if err != nil {
			response.FromError(c, "invalid date", err)
			return
		}
		day = &parsed
	}

	result, err := h.coldListService.GetVendorStats(c.Request.Context(), identityID, day)
	if err != nil {
		response.FromError(c, "failed to get vendor stats", err)
		return
	}

	response.Success(c, http.StatusOK, "vendor stats retrieved", result)
}

// GetAssignedDailySummary returns the caller's leads for one day across lists
func (h *ColdListHandler) GetAssignedDailySummary(c *gin.Context) {
	identityID, ok := middleware.RequireIdentityID(c)
	if !ok {
		return
	}

	day, err := h.coldListService.ParseDay(c.Query("date"))
	if err != nil {
		response.FromError(c, "invalid date", err)
		return
	}

	result, err := h.coldListService.GetAssignedDailySummary(c.Request.Context(), identityID, day)
	if err != nil {
		response.FromError(c, "failed to get daily summary", err)
		return
	}

	response.Success(c, http.StatusOK, "daily summary retrieved", result)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid cold list ID", err)
		return 0, false
	}
	return id, true
}
