package models

import "time"

// Regras operacionais da empresa: endereço base das rotas, turno
// padrão e limites de distância usados na busca de disponibilidade.
type BusinessRules struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"uniqueIndex" json:"company_id"`

	CEP        string `gorm:"size:9" json:"cep"`
	Logradouro string `gorm:"size:150" json:"logradouro"`
	Numero     string `gorm:"size:20" json:"numero"`
	Bairro     string `gorm:"size:100" json:"bairro"`
	Cidade     string `gorm:"size:100" json:"cidade"`
	Estado     string `gorm:"size:2" json:"estado"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	DefaultShiftStart   string `gorm:"size:5;default:'08:00'" json:"default_shift_start"`
	DefaultShiftEnd     string `gorm:"size:5;default:'18:00'" json:"default_shift_end"`
	DefaultLunchMinutes int    `gorm:"default:60" json:"default_lunch_minutes"`

	// Raio de pré-filtro em linha reta e teto de rota pelo provedor,
	// ambos em quilômetros. Zero desliga o corte correspondente.
	MaxDistanceHaversineKm float64 `gorm:"default:60" json:"max_distance_haversine_km"`
	MaxDistanceRouteKm     float64 `gorm:"default:80" json:"max_distance_route_km"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
