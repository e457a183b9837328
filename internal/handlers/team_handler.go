package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type TeamHandler struct {
	db       *gorm.DB
	geocoder routing.Geocoder
}

func NewTeamHandler(db *gorm.DB, geocoder routing.Geocoder) *TeamHandler {
	return &TeamHandler{db: db, geocoder: geocoder}
}

// --------- Requests ---------

type TeamRequest struct {
	Name string `json:"name" binding:"required"`

	ShiftStart   string   `json:"shift_start"`
	ShiftEnd     string   `json:"shift_end"`
	LunchMinutes int      `json:"lunch_minutes"`
	WorkDays     []string `json:"work_days"`

	ServiceIDs    []uint `json:"service_ids"`
	TechnicianIDs []uint `json:"technician_ids"`

	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Numero     string `json:"numero"`
	Bairro     string `json:"bairro"`
	Cidade     string `json:"cidade"`
	Estado     string `json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// --------- Handlers ---------

func (h *TeamHandler) List(c *gin.Context) {
	company := companyID(c)

	var teams []models.Team
	if err := h.db.
		Preload("Members.Technician").
		Where("company_id = ?", company).
		Order("id ASC").
		Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_teams"})
		return
	}

	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) Create(c *gin.Context) {
	company := companyID(c)

	var req TeamRequest
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

	// Todos os técnicos precisam existir na mesma empresa.
	if len(req.TechnicianIDs) > 0 {
		var count int64
		h.db.Model(&models.Technician{}).
			Where("company_id = ? AND id IN ?", company, req.TechnicianIDs).
			Count(&count)
		if count != int64(len(req.TechnicianIDs)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_technician"})
			return
		}
	}

	team := models.Team{
		CompanyID:    company,
		Name:         strings.TrimSpace(req.Name),
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

	for _, techID := range req.TechnicianIDs {
		team.Members = append(team.Members, models.TeamMember{TechnicianID: techID})
	}

	if team.Lat == nil || team.Lon == nil {
		address := formatFullAddress(req.Logradouro, req.Numero, req.Bairro, req.Cidade, req.Estado)
		if address != "" && h.geocoder != nil {
			if p, err := h.geocoder.Geocode(c.Request.Context(), address); err == nil {
				team.Lat = &p.Lat
				team.Lon = &p.Lon
			}
		}
	}

	if err := h.db.Create(&team).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_team"})
		return
	}

	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) UpdateMembers(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var team models.Team
	if err := h.db.
		Where("id = ? AND company_id = ?", id, company).
		First(&team).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team_not_found"})
		return
	}

	var body struct {
		TechnicianIDs []uint `json:"technician_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var count int64
	h.db.Model(&models.Technician{}).
		Where("company_id = ? AND id IN ?", company, body.TechnicianIDs).
		Count(&count)
	if count != int64(len(body.TechnicianIDs)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_technician"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		for _, techID := range body.TechnicianIDs {
			if err := tx.Create(&models.TeamMember{TeamID: team.ID, TechnicianID: techID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"technician_ids": body.TechnicianIDs})
}

func (h *TeamHandler) SetActive(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var body struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res := h.db.Model(&models.Team{}).
		Where("id = ? AND company_id = ?", id, company).
		Update("active", body.Active)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_team"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "team_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": body.Active})
}
