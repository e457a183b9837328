package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/timezone"
)

type AppointmentHandler struct {
	db       *gorm.DB
	geocoder routing.Geocoder
}

func NewAppointmentHandler(db *gorm.DB, geocoder routing.Geocoder) *AppointmentHandler {
	return &AppointmentHandler{db: db, geocoder: geocoder}
}

type AppointmentRequest struct {
	ClientID  uint `json:"client_id" binding:"required"`
	ServiceID uint `json:"service_id" binding:"required"`

	TechnicianID *uint `json:"technician_id"`
	TeamID       *uint `json:"team_id"`

	ScheduledDate string `json:"scheduled_date" binding:"required"`
	DurationMin   int    `json:"duration_min"`

	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Numero     string `json:"numero"`
	Bairro     string `json:"bairro"`
	Cidade     string `json:"cidade"`
	Estado     string `json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Notes string `json:"notes"`
}

func (h *AppointmentHandler) List(c *gin.Context) {
	company := companyID(c)

	query := h.db.
		Preload("Client").
		Preload("Service").
		Where("company_id = ?", company)

	if date := c.Query("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
			return
		}
		query = query.Where("scheduled_date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if tech := c.Query("technician_id"); tech != "" {
		query = query.Where("technician_id = ?", tech)
	}
	if team := c.Query("team_id"); team != "" {
		query = query.Where("team_id = ?", team)
	}

	var appointments []models.Appointment
	if err := query.
		Order("scheduled_date ASC, id ASC").
		Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_appointments"})
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	company := companyID(c)

	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	// 1️⃣ Data precisa ser válida e não pode estar no passado
	if _, err := time.Parse("2006-01-02", req.ScheduledDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	today := timezone.Now().Format("2006-01-02")
	if req.ScheduledDate < today {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_in_past"})
		return
	}

	if req.TechnicianID != nil && req.TeamID != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ambiguous_responsible"})
		return
	}

	// 2️⃣ Cliente e serviço precisam existir na empresa
	var client models.Client
	if err := h.db.
		Where("id = ? AND company_id = ?", req.ClientID, company).
		First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client_not_found"})
		return
	}

	var service models.Service
	if err := h.db.
		Where("id = ? AND company_id = ?", req.ServiceID, company).
		First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
		return
	}

	if req.TechnicianID != nil {
		var count int64
		h.db.Model(&models.Technician{}).
			Where("id = ? AND company_id = ?", *req.TechnicianID, company).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "technician_not_found"})
			return
		}
	}
	if req.TeamID != nil {
		var count int64
		h.db.Model(&models.Team{}).
			Where("id = ? AND company_id = ?", *req.TeamID, company).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "team_not_found"})
			return
		}
	}

	duration := req.DurationMin
	if duration <= 0 {
		duration = service.DurationMin
	}

	ap := models.Appointment{
		CompanyID:     company,
		ClientID:      req.ClientID,
		ServiceID:     req.ServiceID,
		TechnicianID:  req.TechnicianID,
		TeamID:        req.TeamID,
		ScheduledDate: req.ScheduledDate,
		DurationMin:   duration,
		Status:        "scheduled",
		CEP:           req.CEP,
		Logradouro:    req.Logradouro,
		Numero:        req.Numero,
		Bairro:        req.Bairro,
		Cidade:        req.Cidade,
		Estado:        req.Estado,
		Lat:           req.Lat,
		Lon:           req.Lon,
		Notes:         req.Notes,
	}

	// 3️⃣ Sem endereço próprio o agendamento herda o do cliente
	if ap.Logradouro == "" && ap.Lat == nil {
		ap.CEP = client.CEP
		ap.Logradouro = client.Logradouro
		ap.Numero = client.Numero
		ap.Bairro = client.Bairro
		ap.Cidade = client.Cidade
		ap.Estado = client.Estado
		ap.Lat = client.Lat
		ap.Lon = client.Lon
	}

	// 4️⃣ Coordenadas ausentes são resolvidas via geocodificação
	if ap.Lat == nil || ap.Lon == nil {
		address := formatFullAddress(ap.Logradouro, ap.Numero, ap.Bairro, ap.Cidade, ap.Estado)
		if address != "" && h.geocoder != nil {
			if p, err := h.geocoder.Geocode(c.Request.Context(), address); err == nil {
				ap.Lat = &p.Lat
				ap.Lon = &p.Lon
			}
		}
	}

	if err := h.db.Create(&ap).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_appointment"})
		return
	}

	h.db.Preload("Client").Preload("Service").First(&ap, ap.ID)
	c.JSON(http.StatusCreated, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, "cancelled", "cancelled_at")
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, "completed", "completed_at")
}

func (h *AppointmentHandler) transition(c *gin.Context, status, tsColumn string) {
	company := companyID(c)
	id := c.Param("id")

	var ap models.Appointment
	if err := h.db.
		Where("id = ? AND company_id = ?", id, company).
		First(&ap).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment_not_found"})
		return
	}

	if ap.Status != "scheduled" {
		c.JSON(http.StatusConflict, gin.H{"error": "appointment_not_active"})
		return
	}

	now := timezone.Now()
	updates := map[string]any{"status": status, tsColumn: &now}
	if err := h.db.Model(&ap).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_appointment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": ap.ID, "status": status})
}
