package route

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type RemoveStopInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string
	StopID    string

	FromVersion *uint
}

// ======================================================
// USE CASE
// ======================================================

type RemoveStop struct {
	repo     domain.Repository
	provider routing.Provider
	undo     domain.UndoStore
	lock     Locker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewRemoveStop(
	repo domain.Repository,
	provider routing.Provider,
	undo domain.UndoStore,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *RemoveStop {
	return &RemoveStop{
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

func (uc *RemoveStop) Execute(
	ctx context.Context,
	in RemoveStopInput,
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
	if err := checkVersion(r, in.FromVersion); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1️⃣ Localiza e retira a parada
	// --------------------------------------------------
	idx := -1
	for i, s := range r.Stops {
		if s.ID == in.StopID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}

	removed := r.Stops[idx]
	r.Stops = append(r.Stops[:idx], r.Stops[idx+1:]...)
	renumber(r.Stops)

	// --------------------------------------------------
	// 2️⃣ Snapshot de undo (slot único por rota)
	// --------------------------------------------------
	if uc.undo != nil {
		snap := domain.UndoSnapshot{
			Stop:         removed,
			RemovedAt:    timezone.Now(),
			RouteVersion: r.Version,
		}
		if err := uc.undo.Save(ctx, r.ID, snap); err != nil {
			uc.log.Warn().Err(err).Str("route_id", r.ID).Msg("undo snapshot save failed")
		}
	}

	// --------------------------------------------------
	// 3️⃣ Persistência + métricas
	// --------------------------------------------------
	recomputeMetrics(ctx, uc.provider, uc.log, r)

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "stop_removed",
		Description: "parada removida da rota",
		Metadata: map[string]any{
			"stop_id":        removed.ID,
			"appointment_id": removed.AppointmentID,
			"order":          removed.Order,
		},
	})

	return r, nil
}

// reinsertStop devolve a parada à posição antiga, limitada ao fim da
// lista atual.
func reinsertStop(stops []models.RouteStop, stop models.RouteStop) []models.RouteStop {
	pos := stop.Order - 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(stops) {
		pos = len(stops)
	}

	out := make([]models.RouteStop, 0, len(stops)+1)
	out = append(out, stops[:pos]...)
	out = append(out, stop)
	out = append(out, stops[pos:]...)
	renumber(out)
	return out
}
