package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type ClientHandler struct {
	db       *gorm.DB
	geocoder routing.Geocoder
}

func NewClientHandler(db *gorm.DB, geocoder routing.Geocoder) *ClientHandler {
	return &ClientHandler{db: db, geocoder: geocoder}
}

// --------- Requests ---------

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`

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

func (h *ClientHandler) List(c *gin.Context) {
	company := companyID(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("company_id = ?", company)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}

	var clients []models.Client
	if err := q.Order("name ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Create(c *gin.Context) {
	company := companyID(c)

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	client := models.Client{
		CompanyID:  company,
		Name:       strings.TrimSpace(req.Name),
		Phone:      req.Phone,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		CEP:        req.CEP,
		Logradouro: req.Logradouro,
		Numero:     req.Numero,
		Bairro:     req.Bairro,
		Cidade:     req.Cidade,
		Estado:     req.Estado,
		Lat:        req.Lat,
		Lon:        req.Lon,
	}

	// Sem coordenadas explícitas tentamos resolver pelo endereço; a
	// busca de disponibilidade exige cliente geocodificado.
	if client.Lat == nil || client.Lon == nil {
		address := formatFullAddress(req.Logradouro, req.Numero, req.Bairro, req.Cidade, req.Estado)
		if address != "" && h.geocoder != nil {
			if p, err := h.geocoder.Geocode(c.Request.Context(), address); err == nil {
				client.Lat = &p.Lat
				client.Lon = &p.Lon
			}
		}
	}

	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}
