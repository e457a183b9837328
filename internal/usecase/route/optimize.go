package route

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type OptimizeInput struct {
	CompanyID uint
	UserID    *uint
	RouteID   string

	// Fecha o trajeto de volta à partida só nesta otimização; nil usa
	// o que a rota definiu na criação.
	EndAtStart *bool

	FromVersion *uint
}

// ======================================================
// USE CASE
// ======================================================

// Optimize pede ao provedor a melhor ordem de visita (partida fixa,
// trajeto aberto a menos que a rota seja roundtrip) e grava a
// permutação com os totais retornados.
type Optimize struct {
	repo     domain.Repository
	provider routing.Provider
	lock     Locker
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewOptimize(
	repo domain.Repository,
	provider routing.Provider,
	lock Locker,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *Optimize {
	return &Optimize{
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

func (uc *Optimize) Execute(
	ctx context.Context,
	in OptimizeInput,
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

	if len(r.Stops) < 2 {
		return nil, httperr.ErrBusiness(httperr.CodeTooFewStops)
	}

	// --------------------------------------------------
	// 1️⃣ TSP no provedor (índice 0 = partida)
	// --------------------------------------------------
	points := make([]geo.Point, 0, len(r.Stops)+1)
	points = append(points, geo.Point{Lon: r.StartLon, Lat: r.StartLat})
	for _, s := range r.Stops {
		points = append(points, geo.Point{Lon: s.Lon, Lat: s.Lat})
	}

	roundtrip := r.Roundtrip
	if in.EndAtStart != nil {
		roundtrip = *in.EndAtStart
	}

	trip, err := uc.provider.Trip(ctx, points, roundtrip)
	if err != nil {
		uc.log.Error().Err(err).Str("route_id", r.ID).Msg("trip optimization failed")
		return nil, httperr.ErrBusiness(httperr.CodeProviderError)
	}

	// --------------------------------------------------
	// 2️⃣ Aplica a ordem de visita
	// --------------------------------------------------
	reordered := make([]models.RouteStop, 0, len(r.Stops))
	for _, idx := range trip.Order {
		if idx == 0 {
			continue // partida
		}
		if idx < 1 || idx > len(r.Stops) {
			return nil, httperr.ErrBusiness(httperr.CodeProviderError)
		}
		reordered = append(reordered, r.Stops[idx-1])
	}
	if len(reordered) != len(r.Stops) {
		return nil, httperr.ErrBusiness(httperr.CodeProviderError)
	}
	r.Stops = reordered
	renumber(r.Stops)

	r.DistanceTotalM = trip.DistanceM
	r.DurationTotalS = trip.DurationS
	r.Geometry = trip.Geometry
	r.StopsCount = len(r.Stops)
	r.MetricsStale = false

	if err := save(ctx, uc.repo, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "route_optimized",
		Description: "ordem das paradas otimizada pelo provedor",
		Metadata: map[string]any{
			"distance_total_m": trip.DistanceM,
			"duration_total_s": trip.DurationS,
		},
	})

	return r, nil
}
