package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// BusinessRulesHandler expõe o endereço base e os limites operacionais
// da empresa. Alterar o endereço re-geocodifica as coordenadas.
type BusinessRulesHandler struct {
	db       *gorm.DB
	geocoder routing.Geocoder
}

func NewBusinessRulesHandler(db *gorm.DB, geocoder routing.Geocoder) *BusinessRulesHandler {
	return &BusinessRulesHandler{db: db, geocoder: geocoder}
}

type UpdateBusinessRulesRequest struct {
	CEP        *string `json:"cep,omitempty"`
	Logradouro *string `json:"logradouro,omitempty"`
	Numero     *string `json:"numero,omitempty"`
	Bairro     *string `json:"bairro,omitempty"`
	Cidade     *string `json:"cidade,omitempty"`
	Estado     *string `json:"estado,omitempty"`

	DefaultShiftStart   *string `json:"default_shift_start,omitempty"`
	DefaultShiftEnd     *string `json:"default_shift_end,omitempty"`
	DefaultLunchMinutes *int    `json:"default_lunch_minutes,omitempty"`

	MaxDistanceHaversineKm *float64 `json:"max_distance_haversine_km,omitempty"`
	MaxDistanceRouteKm     *float64 `json:"max_distance_route_km,omitempty"`
}

func (h *BusinessRulesHandler) Get(c *gin.Context) {
	company := companyID(c)

	var rules models.BusinessRules
	if err := h.db.Where("company_id = ?", company).First(&rules).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "business_rules_not_found"})
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (h *BusinessRulesHandler) Update(c *gin.Context) {
	company := companyID(c)

	var rules models.BusinessRules
	if err := h.db.Where("company_id = ?", company).First(&rules).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "business_rules_not_found"})
		return
	}

	var req UpdateBusinessRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	addressChanged := false
	setStr := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			addressChanged = true
		}
	}
	setStr(&rules.CEP, req.CEP)
	setStr(&rules.Logradouro, req.Logradouro)
	setStr(&rules.Numero, req.Numero)
	setStr(&rules.Bairro, req.Bairro)
	setStr(&rules.Cidade, req.Cidade)
	setStr(&rules.Estado, req.Estado)

	if req.DefaultShiftStart != nil {
		rules.DefaultShiftStart = *req.DefaultShiftStart
	}
	if req.DefaultShiftEnd != nil {
		rules.DefaultShiftEnd = *req.DefaultShiftEnd
	}
	if req.DefaultLunchMinutes != nil {
		rules.DefaultLunchMinutes = *req.DefaultLunchMinutes
	}
	if req.MaxDistanceHaversineKm != nil {
		rules.MaxDistanceHaversineKm = *req.MaxDistanceHaversineKm
	}
	if req.MaxDistanceRouteKm != nil {
		rules.MaxDistanceRouteKm = *req.MaxDistanceRouteKm
	}

	if addressChanged && h.geocoder != nil {
		address := formatFullAddress(rules.Logradouro, rules.Numero, rules.Bairro, rules.Cidade, rules.Estado)
		if address != "" {
			if p, err := h.geocoder.Geocode(c.Request.Context(), address); err == nil {
				rules.Lat = &p.Lat
				rules.Lon = &p.Lon
			}
		}
	}

	if err := h.db.Save(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_business_rules"})
		return
	}

	c.JSON(http.StatusOK, rules)
}
