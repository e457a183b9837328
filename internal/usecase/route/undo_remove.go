package route

import (
	"context"

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

type UndoRemoveInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string
}

// ======================================================
// USE CASE
// ======================================================

// UndoRemove restaura a última parada removida. O snapshot é consumido
// na leitura: segunda tentativa responde nothing_to_undo.
type UndoRemove struct {
	repo     domain.Repository
	provider routing.Provider
	undo     domain.UndoStore
	lock     Locker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewUndoRemove(
	repo domain.Repository,
	provider routing.Provider,
	undo domain.UndoStore,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *UndoRemove {
	return &UndoRemove{
		repo:     repo,
		provider: provider,
		undo:     undo,
		lock:     lock,
		audit:    auditDispatcher,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UndoRemove) Execute(
	ctx context.Context,
	in UndoRemoveInput,
) (*models.Route, error) {

	release, err := acquire(uc.lock, in.RouteID)
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := loadEditableRoute(ctx, uc.repo, in.CompanyID, in.RouteID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1️⃣ Consome o snapshot
	// --------------------------------------------------
	snap, ok, err := uc.undo.Take(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeNothingToUndo)
	}

	// O agendamento pode ter entrado em outra rota nesse meio tempo.
	taken, err := uc.repo.AppointmentInRoute(ctx, in.CompanyID, snap.Stop.AppointmentID, r.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, httperr.ErrBusiness(httperr.CodeAlreadyInRoute)
	}
	for _, s := range r.Stops {
		if s.AppointmentID == snap.Stop.AppointmentID {
			return nil, httperr.ErrBusiness(httperr.CodeAlreadyInRoute)
		}
	}

	// --------------------------------------------------
	// 2️⃣ Restaura na posição antiga
	// --------------------------------------------------
	r.Stops = reinsertStop(r.Stops, snap.Stop)
	recomputeMetrics(ctx, uc.provider, uc.log, r)

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "stop_restored",
		Description: "remoção de parada desfeita",
		Metadata: map[string]any{
			"stop_id":        snap.Stop.ID,
			"appointment_id": snap.Stop.AppointmentID,
		},
	})

	return r, nil
}
