package route

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// Locker serializa mutações por rota dentro do processo. Mutação
// concorrente não espera: responde route_busy na hora.
type Locker interface {
	TryAcquire(key string) (release func(), ok bool)
}

func acquire(lock Locker, routeID string) (func(), error) {
	release, ok := lock.TryAcquire(routeID)
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeRouteBusy)
	}
	return release, nil
}

func loadRoute(
	ctx context.Context,
	repo domain.Repository,
	companyID uint,
	routeID string,
) (*models.Route, error) {

	r, err := repo.GetRoute(ctx, companyID, routeID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeNotFound)
	}
	sortStops(r)
	return r, nil
}

func loadEditableRoute(
	ctx context.Context,
	repo domain.Repository,
	companyID uint,
	routeID string,
) (*models.Route, error) {

	r, err := loadRoute(ctx, repo, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanMutate(domain.Status(r.Status)); err != nil {
		return nil, err
	}
	return r, nil
}

// checkVersion aplica a concorrência otimista quando o cliente mandou
// a versão que conhecia. Sem versão, a mutação é incondicional.
func checkVersion(r *models.Route, fromVersion *uint) error {
	if fromVersion != nil && *fromVersion != r.Version {
		return httperr.ErrBusiness(httperr.CodeVersionConflict)
	}
	return nil
}

func sortStops(r *models.Route) {
	sort.Slice(r.Stops, func(i, j int) bool {
		return r.Stops[i].Order < r.Stops[j].Order
	})
}

// renumber reatribui as ordens 1..n seguindo a posição no slice.
func renumber(stops []models.RouteStop) {
	for i := range stops {
		stops[i].Order = i + 1
	}
}

func stopIDs(r *models.Route) []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.ID
	}
	return ids
}

func routePoints(r *models.Route) []geo.Point {
	points := make([]geo.Point, 0, len(r.Stops)+2)
	points = append(points, geo.Point{Lon: r.StartLon, Lat: r.StartLat})
	for _, s := range r.Stops {
		points = append(points, geo.Point{Lon: s.Lon, Lat: s.Lat})
	}
	if r.Roundtrip {
		points = append(points, geo.Point{Lon: r.StartLon, Lat: r.StartLat})
	}
	return points
}

// recomputeMetrics refaz os totais com o provedor. Falha deixa a rota
// marcada como defasada; a mutação em si não é desfeita por isso.
func recomputeMetrics(
	ctx context.Context,
	provider routing.Provider,
	log zerolog.Logger,
	r *models.Route,
) {

	r.StopsCount = len(r.Stops)

	if len(r.Stops) == 0 {
		r.DistanceTotalM = 0
		r.DurationTotalS = 0
		r.Geometry = ""
		r.MetricsStale = false
		return
	}

	res, err := provider.Route(ctx, routePoints(r))
	if err != nil {
		r.MetricsStale = true
		log.Warn().Err(err).Str("route_id", r.ID).Msg("metrics recompute failed, keeping stale")
		return
	}

	r.DistanceTotalM = res.DistanceM
	r.DurationTotalS = res.DurationS
	r.Geometry = res.Geometry
	r.MetricsStale = false
}

// save grava a rota incrementando a versão; perdeu a corrida com
// outra escrita, version_conflict.
func save(
	ctx context.Context,
	repo domain.Repository,
	r *models.Route,
) error {

	fromVersion := r.Version
	r.Version++
	ok, err := repo.SaveRouteWithStops(ctx, r, fromVersion)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.ErrBusiness(httperr.CodeVersionConflict)
	}
	return nil
}

// formatAddress monta o snapshot textual do endereço do agendamento.
func formatAddress(logradouro, numero, bairro, cidade, estado string) string {
	parts := make([]string, 0, 4)
	if logradouro != "" {
		if numero != "" {
			parts = append(parts, fmt.Sprintf("%s, %s", logradouro, numero))
		} else {
			parts = append(parts, logradouro)
		}
	}
	if bairro != "" {
		parts = append(parts, bairro)
	}
	if cidade != "" {
		if estado != "" {
			parts = append(parts, fmt.Sprintf("%s - %s", cidade, estado))
		} else {
			parts = append(parts, cidade)
		}
	}
	return strings.Join(parts, ", ")
}
