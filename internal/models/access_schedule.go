package models

import (
	"time"

	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
)

// Janelas de acesso por dia da semana; as chaves do mapa seguem os
// nomes em inglês (sunday..saturday).
type AccessSchedule struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `json:"company_id"`

	Name    string                           `gorm:"size:100;not null" json:"name"`
	Windows map[string][]schedule.TimeWindow `gorm:"serializer:json" json:"windows"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
