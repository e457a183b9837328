package route

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type AddStopsInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string

	AppointmentIDs []uint

	// Versão conhecida pelo cliente; nil pula o check otimista.
	FromVersion *uint
}

// ======================================================
// USE CASE
// ======================================================

type AddStops struct {
	repo     domain.Repository
	provider routing.Provider
	lock     Locker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewAddStops(
	repo domain.Repository,
	provider routing.Provider,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *AddStops {
	return &AddStops{
		repo:     repo,
		provider: provider,
		lock:     lock,
		audit:    auditDispatcher,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *AddStops) Execute(
	ctx context.Context,
	in AddStopsInput,
) (*models.Route, error) {

	if len(in.AppointmentIDs) == 0 {
		return nil, httperr.ErrBusiness("no_appointments")
	}

	release, err := acquire(uc.lock, in.RouteID)
	if err != nil {
		return nil, err
	}
	defer release()

	// --------------------------------------------------
	// 1️⃣ Rota mutável na versão esperada
	// --------------------------------------------------
	r, err := loadEditableRoute(ctx, uc.repo, in.CompanyID, in.RouteID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(r, in.FromVersion); err != nil {
		return nil, err
	}

	inRoute := make(map[uint]struct{}, len(r.Stops))
	for _, s := range r.Stops {
		inRoute[s.AppointmentID] = struct{}{}
	}

	// --------------------------------------------------
	// 2️⃣ Valida cada agendamento
	// --------------------------------------------------
	for _, apID := range in.AppointmentIDs {
		if _, ok := inRoute[apID]; ok {
			return nil, httperr.ErrBusiness(httperr.CodeAlreadyInRoute)
		}

		ap, err := uc.repo.GetAppointment(ctx, in.CompanyID, apID)
		if err != nil {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		if ap.ScheduledDate != r.Date {
			return nil, httperr.ErrBusiness("appointment_on_other_date")
		}
		if ap.Lat == nil || ap.Lon == nil {
			return nil, httperr.ErrBusiness("appointment_not_geocoded")
		}

		taken, err := uc.repo.AppointmentInRoute(ctx, in.CompanyID, apID, r.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, httperr.ErrBusiness(httperr.CodeAlreadyInRoute)
		}

		r.Stops = append(r.Stops, models.RouteStop{
			ID:            uuid.NewString(),
			RouteID:       r.ID,
			AppointmentID: ap.ID,
			ClientName:    ap.Client.Name,
			Address:       formatAddress(ap.Logradouro, ap.Numero, ap.Bairro, ap.Cidade, ap.Estado),
			Lat:           *ap.Lat,
			Lon:           *ap.Lon,
		})
		inRoute[apID] = struct{}{}
	}

	// --------------------------------------------------
	// 3️⃣ Persistência + métricas
	// --------------------------------------------------
	renumber(r.Stops)
	recomputeMetrics(ctx, uc.provider, uc.log, r)

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "stops_added",
		Description: "paradas adicionadas à rota",
		Metadata:    map[string]any{"appointment_ids": in.AppointmentIDs},
	})

	return r, nil
}
