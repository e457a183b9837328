package route

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ReorderInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string

	// IDs das paradas na nova ordem de visita; precisa ser permutação
	// exata das paradas atuais.
	StopIDs []string

	FromVersion *uint
}

// ======================================================
// USE CASE
// ======================================================

type Reorder struct {
	repo     domain.Repository
	provider routing.Provider
	lock     Locker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewReorder(
	repo domain.Repository,
	provider routing.Provider,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *Reorder {
	return &Reorder{
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

func (uc *Reorder) Execute(
	ctx context.Context,
	in ReorderInput,
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
	// 1️⃣ Permutação exata das paradas atuais
	// --------------------------------------------------
	if err := domain.ValidatePermutation(stopIDs(r), in.StopIDs); err != nil {
		return nil, err
	}

	byID := make(map[string]models.RouteStop, len(r.Stops))
	for _, s := range r.Stops {
		byID[s.ID] = s
	}

	reordered := make([]models.RouteStop, 0, len(r.Stops))
	for _, id := range in.StopIDs {
		reordered = append(reordered, byID[id])
	}
	r.Stops = reordered
	renumber(r.Stops)

	// --------------------------------------------------
	// 2️⃣ Persistência; métricas defasadas não desfazem a ordem
	// --------------------------------------------------
	recomputeMetrics(ctx, uc.provider, uc.log, r)

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "route_reordered",
		Description: "ordem das paradas redefinida manualmente",
		Metadata:    map[string]any{"stop_ids": in.StopIDs},
	})

	return r, nil
}
