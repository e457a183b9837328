package route

import (
	"context"

	"github.com/rotaflow/field-scheduler/internal/models"
)

type ListFilter struct {
	Date            string
	Status          string
	ResponsibleType string
	ResponsibleID   uint
}

type Repository interface {
	// -------- Cadastros --------
	GetBusinessRules(
		ctx context.Context,
		companyID uint,
	) (*models.BusinessRules, error)

	GetTechnician(
		ctx context.Context,
		companyID uint,
		id uint,
	) (*models.Technician, error)

	GetTeam(
		ctx context.Context,
		companyID uint,
		id uint,
	) (*models.Team, error)

	GetAppointment(
		ctx context.Context,
		companyID uint,
		id uint,
	) (*models.Appointment, error)

	// -------- Rotas --------
	CreateRoute(
		ctx context.Context,
		r *models.Route,
	) error

	// GetRoute carrega a rota com as paradas em ordem de visita.
	GetRoute(
		ctx context.Context,
		companyID uint,
		routeID string,
	) (*models.Route, error)

	ListRoutes(
		ctx context.Context,
		companyID uint,
		filter ListFilter,
	) ([]models.Route, error)

	NextDisplayNumber(
		ctx context.Context,
		companyID uint,
	) (int, error)

	// SaveRouteWithStops grava a rota e substitui as paradas em uma
	// transação, guardada por concorrência otimista: a escrita só
	// acontece se a versão persistida ainda for fromVersion, e a
	// versão é incrementada junto. Retorna false em conflito.
	SaveRouteWithStops(
		ctx context.Context,
		r *models.Route,
		fromVersion uint,
	) (bool, error)

	// -------- Conflitos --------
	// HasConflictingRoute procura outra rota confirmada ou finalizada
	// do mesmo responsável na mesma data.
	HasConflictingRoute(
		ctx context.Context,
		companyID uint,
		date string,
		responsibleType string,
		responsibleID uint,
		excludeRouteID string,
	) (bool, error)

	// AppointmentInRoute diz se o agendamento já é parada de alguma
	// rota não cancelada (além da excluída).
	AppointmentInRoute(
		ctx context.Context,
		companyID uint,
		appointmentID uint,
		excludeRouteID string,
	) (bool, error)
}
