package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/models"
)

type RouteAuditsHandler struct {
	db *gorm.DB
}

func NewRouteAuditsHandler(db *gorm.DB) *RouteAuditsHandler {
	return &RouteAuditsHandler{db: db}
}

// List devolve a trilha de auditoria de uma rota, mais recente
// primeiro, com paginação simples por limit/offset.
func (h *RouteAuditsHandler) List(c *gin.Context) {
	company := companyID(c)
	routeID := c.Param("id")

	var count int64
	h.db.Model(&models.Route{}).
		Where("id = ? AND company_id = ?", routeID, company).
		Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "route_not_found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var audits []models.RouteAudit
	if err := h.db.
		Where("company_id = ? AND route_id = ?", company, routeID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&audits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_audits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  audits,
		"limit":  limit,
		"offset": offset,
	})
}
