package dto

import (
	"time"

	"github.com/rotaflow/field-scheduler/internal/models"
)

// RouteSummary é a projeção leve usada na listagem de rotas; o detalhe
// completo (com paradas e geometria) vai só no GET por id.
type RouteSummary struct {
	ID            string `json:"id"`
	DisplayNumber int    `json:"display_number"`
	Date          string `json:"date"`

	ResponsibleType string `json:"responsible_type"`
	ResponsibleID   uint   `json:"responsible_id"`

	Status string `json:"status"`

	DistanceTotalM int  `json:"distance_total_m"`
	DurationTotalS int  `json:"duration_total_s"`
	StopsCount     int  `json:"stops_count"`
	MetricsStale   bool `json:"metrics_stale"`

	Version uint `json:"version"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewRouteSummary(r models.Route) RouteSummary {
	return RouteSummary{
		ID:              r.ID,
		DisplayNumber:   r.DisplayNumber,
		Date:            r.Date,
		ResponsibleType: r.ResponsibleType,
		ResponsibleID:   r.ResponsibleID,
		Status:          r.Status,
		DistanceTotalM:  r.DistanceTotalM,
		DurationTotalS:  r.DurationTotalS,
		StopsCount:      r.StopsCount,
		MetricsStale:    r.MetricsStale,
		Version:         r.Version,
		UpdatedAt:       r.UpdatedAt,
	}
}
