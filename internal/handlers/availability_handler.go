package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/rotaflow/field-scheduler/internal/domain/availability"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/usecase/availability"
)

type AvailabilityHandler struct {
	finder *availability.FindSlots
}

func NewAvailabilityHandler(finder *availability.FindSlots) *AvailabilityHandler {
	return &AvailabilityHandler{finder: finder}
}

// Search transmite os slots encontrados como Server-Sent Events: um
// frame JSON por slot, um frame de erro quando a varredura falha e um
// frame {"done":true} ao final. O cliente some da conexão cancelando
// o request normalmente.
func (h *AvailabilityHandler) Search(c *gin.Context) {
	company := companyID(c)

	var body struct {
		ClientID  uint   `json:"client_id" binding:"required"`
		ServiceID uint   `json:"service_id" binding:"required"`
		StartDate string `json:"start_date"`

		TechnicianID *uint `json:"technician_id"`
		TeamID       *uint `json:"team_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	flusher, okFlush := c.Writer.(http.Flusher)
	if !okFlush {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming_unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	writeFrame := func(payload any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	in := domain.SearchInput{
		CompanyID:    company,
		ClientID:     body.ClientID,
		ServiceID:    body.ServiceID,
		StartDate:    body.StartDate,
		TechnicianID: body.TechnicianID,
		TeamID:       body.TeamID,
	}

	err := h.finder.Execute(c.Request.Context(), in, func(slot domain.Slot) error {
		return writeFrame(slot)
	})
	if err != nil {
		// Depois do primeiro frame só dá para sinalizar dentro do stream.
		code := httperr.BusinessCode(err)
		if code == "" {
			code = "internal_error"
		}
		_ = writeFrame(gin.H{"error": code})
		return
	}

	_ = writeFrame(gin.H{"done": true})
}
