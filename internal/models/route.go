package models

import "time"

// Rota de atendimentos de um responsável (técnico ou equipe) em um dia.
type Route struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uint   `gorm:"index" json:"company_id"`

	// Número sequencial por empresa, só para exibição.
	DisplayNumber int `json:"display_number"`

	Date string `gorm:"size:10;index" json:"date"`

	ResponsibleType string `gorm:"size:20" json:"responsible_type"`
	ResponsibleID   uint   `json:"responsible_id"`

	Status string `gorm:"size:20;default:'draft'" json:"status"`

	// Ponto de partida resolvido na criação da rota.
	StartAddress string  `gorm:"size:255" json:"start_address"`
	StartLat     float64 `json:"start_lat"`
	StartLon     float64 `json:"start_lon"`

	// Totais do provedor; valem apenas quando MetricsStale é falso.
	DistanceTotalM int  `json:"distance_total_m"`
	DurationTotalS int  `json:"duration_total_s"`
	StopsCount     int  `json:"stops_count"`
	MetricsStale   bool `gorm:"default:true" json:"metrics_stale"`

	Geometry string `gorm:"type:text" json:"geometry"`

	Roundtrip bool `gorm:"default:false" json:"roundtrip"`

	// Incrementada a cada mutação; gate de concorrência otimista.
	Version uint `gorm:"default:0" json:"version"`

	Stops []RouteStop `json:"stops"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RouteStop struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	RouteID string `gorm:"type:uuid;index" json:"route_id"`

	AppointmentID uint        `gorm:"index" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"appointment"`

	Order int `gorm:"column:stop_order" json:"order"`

	// Snapshot do endereço no momento da inclusão.
	ClientName string  `gorm:"size:100" json:"client_name"`
	Address    string  `gorm:"size:255" json:"address"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`

	CreatedAt time.Time `json:"created_at"`
}
