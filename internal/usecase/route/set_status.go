package route

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type SetStatusInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string

	NewStatus string
}

// ======================================================
// USE CASE
// ======================================================

type SetStatus struct {
	repo  domain.Repository
	lock  Locker
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewSetStatus(
	repo domain.Repository,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *SetStatus {
	return &SetStatus{
		repo:  repo,
		lock:  lock,
		audit: auditDispatcher,
		log:   log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *SetStatus) Execute(
	ctx context.Context,
	in SetStatusInput,
) (*models.Route, error) {

	release, err := acquire(uc.lock, in.RouteID)
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := loadRoute(ctx, uc.repo, in.CompanyID, in.RouteID)
	if err != nil {
		return nil, err
	}

	from := domain.Status(r.Status)
	to := domain.Status(in.NewStatus)

	// --------------------------------------------------
	// 1️⃣ Máquina de estados
	// --------------------------------------------------
	if err := domain.CanTransition(from, to); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Regras extras do confirmar
	// --------------------------------------------------
	if to == domain.StatusConfirmado {
		if len(r.Stops) == 0 {
			return nil, httperr.ErrBusiness(httperr.CodeTooFewStops)
		}

		conflict, err := uc.repo.HasConflictingRoute(
			ctx, in.CompanyID, r.Date, r.ResponsibleType, r.ResponsibleID, r.ID,
		)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, httperr.ErrBusiness(httperr.CodeConflictingRoute)
		}
	}

	r.Status = string(to)

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "status_changed",
		Description: "status da rota alterado",
		Metadata: map[string]any{
			"from": string(from),
			"to":   string(to),
		},
	})

	return r, nil
}
