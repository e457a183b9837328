package models

import "time"

// Equipe de técnicos; o turno da equipe vale para todos os membros
// enquanto estão escalados nela.
type Team struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `json:"company_id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`

	ShiftStart   string   `gorm:"size:5;default:'08:00'" json:"shift_start"`
	ShiftEnd     string   `gorm:"size:5;default:'18:00'" json:"shift_end"`
	LunchMinutes int      `gorm:"default:60" json:"lunch_minutes"`
	WorkDays     []string `gorm:"serializer:json" json:"work_days"`

	ServiceIDs []uint `gorm:"serializer:json" json:"service_ids"`

	CEP        string `gorm:"size:9" json:"cep"`
	Logradouro string `gorm:"size:150" json:"logradouro"`
	Numero     string `gorm:"size:20" json:"numero"`
	Bairro     string `gorm:"size:100" json:"bairro"`
	Cidade     string `gorm:"size:100" json:"cidade"`
	Estado     string `gorm:"size:2" json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Members []TeamMember `json:"members"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeamMember struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TeamID uint `gorm:"index" json:"team_id"`

	TechnicianID uint       `gorm:"index" json:"technician_id"`
	Technician   Technician `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"technician"`

	CreatedAt time.Time `json:"created_at"`
}
