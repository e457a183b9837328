package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyID uint    `json:"company_id"`
	Company   Company `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"company"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Responsável escalado; no máximo um dos dois é preenchido.
	TechnicianID *uint `json:"technician_id"`
	TeamID       *uint `json:"team_id"`

	ScheduledDate string `gorm:"size:10;index" json:"scheduled_date"`
	DurationMin   int    `json:"duration_min"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	CEP        string `gorm:"size:9" json:"cep"`
	Logradouro string `gorm:"size:150" json:"logradouro"`
	Numero     string `gorm:"size:20" json:"numero"`
	Bairro     string `gorm:"size:100" json:"bairro"`
	Cidade     string `gorm:"size:100" json:"cidade"`
	Estado     string `gorm:"size:2" json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
