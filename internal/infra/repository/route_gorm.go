package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type RouteGormRepository struct {
	db *gorm.DB
}

func NewRouteGormRepository(db *gorm.DB) *RouteGormRepository {
	return &RouteGormRepository{db: db}
}

var _ domain.Repository = (*RouteGormRepository)(nil)

// --------------------------------------------------
// Cadastros
// --------------------------------------------------

func (r *RouteGormRepository) GetBusinessRules(
	ctx context.Context,
	companyID uint,
) (*models.BusinessRules, error) {

	var rules models.BusinessRules
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&rules).Error; err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *RouteGormRepository) GetTechnician(
	ctx context.Context,
	companyID uint,
	id uint,
) (*models.Technician, error) {

	var tech models.Technician
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&tech).Error; err != nil {
		return nil, err
	}
	return &tech, nil
}

func (r *RouteGormRepository) GetTeam(
	ctx context.Context,
	companyID uint,
	id uint,
) (*models.Team, error) {

	var team models.Team
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *RouteGormRepository) GetAppointment(
	ctx context.Context,
	companyID uint,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Rotas
// --------------------------------------------------

func (r *RouteGormRepository) CreateRoute(
	ctx context.Context,
	route *models.Route,
) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *RouteGormRepository) GetRoute(
	ctx context.Context,
	companyID uint,
	routeID string,
) (*models.Route, error) {

	var route models.Route
	if err := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stop_order ASC")
		}).
		Where("id = ? AND company_id = ?", routeID, companyID).
		First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *RouteGormRepository) ListRoutes(
	ctx context.Context,
	companyID uint,
	filter domain.ListFilter,
) ([]models.Route, error) {

	q := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stop_order ASC")
		}).
		Where("company_id = ?", companyID)

	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ResponsibleType != "" {
		q = q.Where("responsible_type = ?", filter.ResponsibleType)
	}
	if filter.ResponsibleID != 0 {
		q = q.Where("responsible_id = ?", filter.ResponsibleID)
	}

	var routes []models.Route
	if err := q.Order("date DESC, display_number DESC").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *RouteGormRepository) NextDisplayNumber(
	ctx context.Context,
	companyID uint,
) (int, error) {

	var current int
	err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(MAX(display_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// SaveRouteWithStops grava rota e paradas em transação. O UPDATE é
// condicionado à versão anterior; zero linhas afetadas significa que
// outra escrita ganhou a corrida.
func (r *RouteGormRepository) SaveRouteWithStops(
	ctx context.Context,
	route *models.Route,
	fromVersion uint,
) (bool, error) {

	updated := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Route{}).
			Where("id = ? AND version = ?", route.ID, fromVersion).
			Updates(map[string]any{
				"date":             route.Date,
				"status":           route.Status,
				"distance_total_m": route.DistanceTotalM,
				"duration_total_s": route.DurationTotalS,
				"stops_count":      route.StopsCount,
				"metrics_stale":    route.MetricsStale,
				"geometry":         route.Geometry,
				"version":          route.Version,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("route_id = ?", route.ID).
			Delete(&models.RouteStop{}).Error; err != nil {
			return err
		}

		if len(route.Stops) > 0 {
			stops := make([]models.RouteStop, len(route.Stops))
			copy(stops, route.Stops)
			for i := range stops {
				stops[i].Appointment = models.Appointment{}
			}
			if err := tx.Create(&stops).Error; err != nil {
				return err
			}
		}

		updated = true
		return nil
	})

	return updated, err
}

// --------------------------------------------------
// Conflitos
// --------------------------------------------------

func (r *RouteGormRepository) HasConflictingRoute(
	ctx context.Context,
	companyID uint,
	date string,
	responsibleType string,
	responsibleID uint,
	excludeRouteID string,
) (bool, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where(
			"company_id = ? AND date = ? AND responsible_type = ? AND responsible_id = ? AND id <> ? AND status IN ?",
			companyID,
			date,
			responsibleType,
			responsibleID,
			excludeRouteID,
			[]string{"confirmado", "finalizado"},
		).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RouteGormRepository) AppointmentInRoute(
	ctx context.Context,
	companyID uint,
	appointmentID uint,
	excludeRouteID string,
) (bool, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RouteStop{}).
		Joins("JOIN routes ON routes.id = route_stops.route_id").
		Where(
			"route_stops.appointment_id = ? AND routes.company_id = ? AND routes.id <> ? AND routes.status IN ?",
			appointmentID,
			companyID,
			excludeRouteID,
			[]string{"draft", "confirmado"},
		).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
