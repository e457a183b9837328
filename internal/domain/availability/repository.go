package availability

import (
	"context"

	"github.com/rotaflow/field-scheduler/internal/models"
)

type Repository interface {
	// -------- Empresa --------
	GetCompany(
		ctx context.Context,
		id uint,
	) (*models.Company, error)

	GetBusinessRules(
		ctx context.Context,
		companyID uint,
	) (*models.BusinessRules, error)

	// -------- Cadastros --------
	GetService(
		ctx context.Context,
		companyID uint,
		serviceID uint,
	) (*models.Service, error)

	GetClient(
		ctx context.Context,
		companyID uint,
		clientID uint,
	) (*models.Client, error)

	// -------- Responsáveis --------
	ListActiveTechnicians(
		ctx context.Context,
		companyID uint,
	) ([]models.Technician, error)

	// Equipes vêm com os membros carregados.
	ListActiveTeams(
		ctx context.Context,
		companyID uint,
	) ([]models.Team, error)

	// -------- Agenda --------
	ListAppointmentsForDate(
		ctx context.Context,
		companyID uint,
		date string,
	) ([]models.Appointment, error)
}
