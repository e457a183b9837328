package audit

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	companyID uint,
	routeID string,
	userID *uint,
	action string,
	description string,
	metadata any,
) error {

	// Sem banco (testes) o audit é um no-op.
	if l.db == nil {
		return nil
	}

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.RouteAudit{
		CompanyID:   companyID,
		RouteID:     routeID,
		UserID:      userID,
		Action:      action,
		Description: description,
		Metadata:    metaJSON,
	}

	return l.db.Create(&entry).Error
}
