package models

import "time"

// Cliente atendido em campo, vinculado à empresa.
type Client struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `json:"company_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

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
