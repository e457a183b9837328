package models

import "time"

type RouteAudit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyID uint   `json:"company_id"`
	RouteID   string `gorm:"type:uuid;index" json:"route_id"`
	UserID    *uint  `json:"user_id"`

	Action      string `gorm:"size:50;not null" json:"action"`
	Description string `gorm:"size:255" json:"description"`
	Metadata    string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
