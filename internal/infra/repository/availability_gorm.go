package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/rotaflow/field-scheduler/internal/domain/availability"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

var _ domain.Repository = (*AvailabilityGormRepository)(nil)

// --------------------------------------------------
// Empresa
// --------------------------------------------------

func (r *AvailabilityGormRepository) GetCompany(
	ctx context.Context,
	id uint,
) (*models.Company, error) {

	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *AvailabilityGormRepository) GetBusinessRules(
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

// --------------------------------------------------
// Cadastros
// --------------------------------------------------

func (r *AvailabilityGormRepository) GetService(
	ctx context.Context,
	companyID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", serviceID, companyID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *AvailabilityGormRepository) GetClient(
	ctx context.Context,
	companyID uint,
	clientID uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", clientID, companyID).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// --------------------------------------------------
// Responsáveis
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListActiveTechnicians(
	ctx context.Context,
	companyID uint,
) ([]models.Technician, error) {

	var techs []models.Technician
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("id ASC").
		Find(&techs).Error; err != nil {
		return nil, err
	}
	return techs, nil
}

func (r *AvailabilityGormRepository) ListActiveTeams(
	ctx context.Context,
	companyID uint,
) ([]models.Team, error) {

	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("company_id = ? AND active = ?", companyID, true).
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// --------------------------------------------------
// Agenda
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListAppointmentsForDate(
	ctx context.Context,
	companyID uint,
	date string,
) ([]models.Appointment, error) {

	var appointments []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"company_id = ? AND scheduled_date = ? AND status <> 'cancelled'",
			companyID,
			date,
		).
		Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
