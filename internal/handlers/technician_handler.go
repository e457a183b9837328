package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type TechnicianHandler struct {
	db       *gorm.DB
	geocoder routing.Geocoder
}

func NewTechnicianHandler(db *gorm.DB, geocoder routing.Geocoder) *TechnicianHandler {
	return &TechnicianHandler{db: db, geocoder: geocoder}
}

// --------- Requests ---------

type TechnicianRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`

	ShiftStart   string   `json:"shift_start"`
	ShiftEnd     string   `json:"shift_end"`
	LunchMinutes int      `json:"lunch_minutes"`
	WorkDays     []string `json:"work_days"`

	ServiceIDs []uint `json:"service_ids"`

	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Numero     string `json:"numero"`
	Bairro     string `json:"bairro"`
	Cidade     string `json:"cidade"`
	Estado     string `json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// normalizeWorkDays valida os nomes no momento da escrita; a busca de
// disponibilidade confia no que está gravado.
func normalizeWorkDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	for _, d := range days {
		parsed, err := schedule.ParseWorkDay(d)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// --------- Handlers ---------

func (h *TechnicianHandler) List(c *gin.Context) {
	company := companyID(c)

	var techs []models.Technician
	if err := h.db.
		Where("company_id = ?", company).
		Order("id ASC").
		Find(&techs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_technicians"})
		return
	}

	c.JSON(http.StatusOK, techs)
}

func (h *TechnicianHandler) Create(c *gin.Context) {
	company := companyID(c)

	var req TechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	workDays, err := normalizeWorkDays(req.WorkDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_work_day"})
		return
	}

	tech := models.Technician{
		CompanyID:    company,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Active:       true,
		ShiftStart:   req.ShiftStart,
		ShiftEnd:     req.ShiftEnd,
		LunchMinutes: req.LunchMinutes,
		WorkDays:     workDays,
		ServiceIDs:   req.ServiceIDs,
		CEP:          req.CEP,
		Logradouro:   req.Logradouro,
		Numero:       req.Numero,
		Bairro:       req.Bairro,
		Cidade:       req.Cidade,
		Estado:       req.Estado,
		Lat:          req.Lat,
		Lon:          req.Lon,
	}

	if tech.Lat == nil || tech.Lon == nil {
		address := formatFullAddress(req.Logradouro, req.Numero, req.Bairro, req.Cidade, req.Estado)
		if address != "" && h.geocoder != nil {
			if p, err := h.geocoder.Geocode(c.Request.Context(), address); err == nil {
				tech.Lat = &p.Lat
				tech.Lon = &p.Lon
			}
		}
	}

	if err := h.db.Create(&tech).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_technician"})
		return
	}

	c.JSON(http.StatusCreated, tech)
}

func (h *TechnicianHandler) Update(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var tech models.Technician
	if err := h.db.
		Where("id = ? AND company_id = ?", id, company).
		First(&tech).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "technician_not_found"})
		return
	}

	var req TechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	workDays, err := normalizeWorkDays(req.WorkDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_work_day"})
		return
	}

	tech.Name = strings.TrimSpace(req.Name)
	tech.Phone = req.Phone
	tech.ShiftStart = req.ShiftStart
	tech.ShiftEnd = req.ShiftEnd
	tech.LunchMinutes = req.LunchMinutes
	tech.WorkDays = workDays
	tech.ServiceIDs = req.ServiceIDs
	tech.CEP = req.CEP
	tech.Logradouro = req.Logradouro
	tech.Numero = req.Numero
	tech.Bairro = req.Bairro
	tech.Cidade = req.Cidade
	tech.Estado = req.Estado
	if req.Lat != nil && req.Lon != nil {
		tech.Lat = req.Lat
		tech.Lon = req.Lon
	}

	if err := h.db.Save(&tech).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_technician"})
		return
	}

	c.JSON(http.StatusOK, tech)
}

func (h *TechnicianHandler) SetActive(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var body struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res := h.db.Model(&models.Technician{}).
		Where("id = ? AND company_id = ?", id, company).
		Update("active", body.Active)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_technician"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "technician_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": body.Active})
}
