package route

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type ChangeDateInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string

	NewDate string

	FromVersion *uint
}

// ======================================================
// USE CASE
// ======================================================

// ChangeDate move a rota de dia. Os agendamentos das paradas seguem a
// rota: quem precisa de outra data deve sair da rota antes.
type ChangeDate struct {
	repo  domain.Repository
	lock  Locker
	audit *audit.Dispatcher
	log   zerolog.Logger
}

func NewChangeDate(
	repo domain.Repository,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *ChangeDate {
	return &ChangeDate{
		repo:  repo,
		lock:  lock,
		audit: auditDispatcher,
		log:   log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ChangeDate) Execute(
	ctx context.Context,
	in ChangeDateInput,
) (*models.Route, error) {

	if _, err := time.Parse("2006-01-02", in.NewDate); err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

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

	if r.Date == in.NewDate {
		return r, nil
	}

	// Rota confirmada não pode cair em dia já ocupado por outra rota
	// confirmada ou finalizada do mesmo responsável.
	if domain.Status(r.Status) == domain.StatusConfirmado {
		conflict, err := uc.repo.HasConflictingRoute(
			ctx, in.CompanyID, in.NewDate, r.ResponsibleType, r.ResponsibleID, r.ID,
		)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, httperr.ErrBusiness(httperr.CodeConflictingRoute)
		}
	}

	oldDate := r.Date
	r.Date = in.NewDate

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "date_changed",
		Description: "data da rota alterada",
		Metadata: map[string]any{
			"from": oldDate,
			"to":   in.NewDate,
		},
	})

	return r, nil
}
