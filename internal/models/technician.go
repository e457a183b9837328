package models

import "time"

// Técnico que atende em campo. WorkDays usa os nomes em português
// (domingo..sabado); ServiceIDs limita os serviços que ele executa
// (vazio atende todos).
type Technician struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `json:"company_id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Phone  string `gorm:"size:20" json:"phone"`
	Active bool   `gorm:"default:true" json:"active"`

	ShiftStart   string   `gorm:"size:5;default:'08:00'" json:"shift_start"`
	ShiftEnd     string   `gorm:"size:5;default:'18:00'" json:"shift_end"`
	LunchMinutes int      `gorm:"default:60" json:"lunch_minutes"`
	WorkDays     []string `gorm:"serializer:json" json:"work_days"`

	ServiceIDs []uint `gorm:"serializer:json" json:"service_ids"`

	// Endereço de partida do técnico; quando vazio cai no endereço
	// da empresa cadastrado nas regras de negócio.
	CEP        string `gorm:"size:9" json:"cep"`
	Logradouro string `gorm:"size:150" json:"logradouro"`
	Numero     string `gorm:"size:20" json:"numero"`
	Bairro     string `gorm:"size:100" json:"bairro"`
	Cidade     string `gorm:"size:100" json:"cidade"`
	Estado     string `gorm:"size:2" json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
