package route

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaflow/field-scheduler/internal/audit"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/logging"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/routelock"
)

// ======================================================
// FAKES
// ======================================================

type fakeRepo struct {
	rules        models.BusinessRules
	technicians  map[uint]models.Technician
	teams        map[uint]models.Team
	appointments map[uint]models.Appointment
	routes       map[string]*models.Route
	display      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rules: models.BusinessRules{
			CompanyID: 1,
			Lat:       ptr(-25.4284), Lon: ptr(-49.2733),
			Logradouro: "Av. Sete de Setembro", Numero: "1000",
			Cidade: "Curitiba", Estado: "PR",
		},
		technicians:  map[uint]models.Technician{},
		teams:        map[uint]models.Team{},
		appointments: map[uint]models.Appointment{},
		routes:       map[string]*models.Route{},
	}
}

func (f *fakeRepo) GetBusinessRules(_ context.Context, _ uint) (*models.BusinessRules, error) {
	return &f.rules, nil
}

func (f *fakeRepo) GetTechnician(_ context.Context, _ uint, id uint) (*models.Technician, error) {
	t, ok := f.technicians[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &t, nil
}

func (f *fakeRepo) GetTeam(_ context.Context, _ uint, id uint) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &t, nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, _ uint, id uint) (*models.Appointment, error) {
	ap, ok := f.appointments[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &ap, nil
}

func (f *fakeRepo) CreateRoute(_ context.Context, r *models.Route) error {
	cp := *r
	f.routes[r.ID] = &cp
	return nil
}

func (f *fakeRepo) GetRoute(_ context.Context, _ uint, routeID string) (*models.Route, error) {
	r, ok := f.routes[routeID]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *r
	cp.Stops = append([]models.RouteStop(nil), r.Stops...)
	return &cp, nil
}

func (f *fakeRepo) ListRoutes(_ context.Context, _ uint, _ domain.ListFilter) ([]models.Route, error) {
	var out []models.Route
	for _, r := range f.routes {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) NextDisplayNumber(_ context.Context, _ uint) (int, error) {
	f.display++
	return f.display, nil
}

func (f *fakeRepo) SaveRouteWithStops(_ context.Context, r *models.Route, fromVersion uint) (bool, error) {
	stored, ok := f.routes[r.ID]
	if !ok {
		return false, errors.New("record not found")
	}
	if stored.Version != fromVersion {
		return false, nil
	}
	cp := *r
	cp.Stops = append([]models.RouteStop(nil), r.Stops...)
	f.routes[r.ID] = &cp
	return true, nil
}

func (f *fakeRepo) HasConflictingRoute(
	_ context.Context, _ uint, date, respType string, respID uint, exclude string,
) (bool, error) {
	for _, r := range f.routes {
		if r.ID == exclude {
			continue
		}
		if r.Date != date || r.ResponsibleType != respType || r.ResponsibleID != respID {
			continue
		}
		if r.Status == string(domain.StatusConfirmado) || r.Status == string(domain.StatusFinalizado) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) AppointmentInRoute(
	_ context.Context, _ uint, appointmentID uint, exclude string,
) (bool, error) {
	for _, r := range f.routes {
		if r.ID == exclude || r.Status == string(domain.StatusCancelado) || r.Status == string(domain.StatusFinalizado) {
			continue
		}
		for _, s := range r.Stops {
			if s.AppointmentID == appointmentID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeProvider struct {
	failRoute     bool
	failTrip      bool
	tripOrder     []int
	tripRoundtrip bool
}

func (f *fakeProvider) Route(_ context.Context, points []geo.Point) (routing.RouteResult, error) {
	if f.failRoute {
		return routing.RouteResult{}, errors.New("connection refused")
	}
	return routing.RouteResult{
		DistanceM: 1000 * (len(points) - 1),
		DurationS: 120 * (len(points) - 1),
		Geometry:  `{"type":"LineString","coordinates":[]}`,
	}, nil
}

func (f *fakeProvider) Table(_ context.Context, _, _ []geo.Point) (routing.Matrix, error) {
	return routing.Matrix{}, errors.New("not used")
}

func (f *fakeProvider) Trip(_ context.Context, points []geo.Point, roundtrip bool) (routing.TripResult, error) {
	f.tripRoundtrip = roundtrip
	if f.failTrip {
		return routing.TripResult{}, errors.New("connection refused")
	}
	order := f.tripOrder
	if order == nil {
		// Partida primeiro, depois os demais em ordem inversa.
		order = []int{0}
		for i := len(points) - 1; i >= 1; i-- {
			order = append(order, i)
		}
	}
	return routing.TripResult{
		Order:     order,
		DistanceM: 7000,
		DurationS: 900,
		Geometry:  `{"type":"LineString","coordinates":[]}`,
	}, nil
}

type fakeUndo struct {
	snaps map[string]domain.UndoSnapshot
}

func newFakeUndo() *fakeUndo {
	return &fakeUndo{snaps: map[string]domain.UndoSnapshot{}}
}

func (f *fakeUndo) Save(_ context.Context, routeID string, snap domain.UndoSnapshot) error {
	f.snaps[routeID] = snap
	return nil
}

func (f *fakeUndo) Take(_ context.Context, routeID string) (domain.UndoSnapshot, bool, error) {
	snap, ok := f.snaps[routeID]
	if ok {
		delete(f.snaps, routeID)
	}
	return snap, ok, nil
}

func (f *fakeUndo) Clear(_ context.Context, routeID string) {
	delete(f.snaps, routeID)
}

// ======================================================
// HELPERS
// ======================================================

func ptr[T any](v T) *T { return &v }

func nopAudit() *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(nil), logging.Nop())
}

type env struct {
	repo     *fakeRepo
	provider *fakeProvider
	undo     *fakeUndo
	lock     *routelock.Keyed
	audit    *audit.Dispatcher
}

func newEnv() *env {
	return &env{
		repo:     newFakeRepo(),
		provider: &fakeProvider{},
		undo:     newFakeUndo(),
		lock:     routelock.New(),
		audit:    nopAudit(),
	}
}

func (e *env) seedTechnician(id uint) {
	e.repo.technicians[id] = models.Technician{
		ID: id, CompanyID: 1, Name: "Técnico", Active: true,
		Lat: ptr(-25.4284), Lon: ptr(-49.2733),
	}
}

func (e *env) seedAppointment(id uint, date string) {
	e.repo.appointments[id] = models.Appointment{
		ID: id, CompanyID: 1, ScheduledDate: date, DurationMin: 60,
		Client:     models.Client{Name: "Cliente"},
		Logradouro: "Rua das Flores", Numero: "100",
		Cidade: "Curitiba", Estado: "PR",
		Lat: ptr(-25.44), Lon: ptr(-49.26),
	}
}

func (e *env) createRoute(t *testing.T, date string) *models.Route {
	t.Helper()
	e.seedTechnician(10)
	uc := NewCreateRoute(e.repo, nil, e.audit, logging.Nop())
	r, err := uc.Execute(context.Background(), CreateRouteInput{
		CompanyID: 1, Date: date, ResponsibleType: "technician", ResponsibleID: 10,
	})
	require.NoError(t, err)
	return r
}

func (e *env) addStops(t *testing.T, routeID string, date string, apIDs ...uint) *models.Route {
	t.Helper()
	for _, id := range apIDs {
		e.seedAppointment(id, date)
	}
	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	r, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: routeID, AppointmentIDs: apIDs,
	})
	require.NoError(t, err)
	return r
}

const testDate = "2026-09-10"

// ======================================================
// CREATE
// ======================================================

func TestCreateRoute(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, r.DisplayNumber)
	assert.Equal(t, string(domain.StatusDraft), r.Status)
	assert.InDelta(t, -25.4284, r.StartLat, 1e-9)
	assert.EqualValues(t, 0, r.Version)
}

func TestCreateRouteUnknownResponsible(t *testing.T) {
	e := newEnv()
	uc := NewCreateRoute(e.repo, nil, e.audit, logging.Nop())

	_, err := uc.Execute(context.Background(), CreateRouteInput{
		CompanyID: 1, Date: testDate, ResponsibleType: "technician", ResponsibleID: 99,
	})
	assert.True(t, httperr.IsBusiness(err, "responsible_not_found"))
}

func TestCreateRouteFallsBackToCompanyAddress(t *testing.T) {
	e := newEnv()
	e.repo.technicians[10] = models.Technician{ID: 10, CompanyID: 1, Name: "Sem endereço", Active: true}
	uc := NewCreateRoute(e.repo, nil, e.audit, logging.Nop())

	r, err := uc.Execute(context.Background(), CreateRouteInput{
		CompanyID: 1, Date: testDate, ResponsibleType: "technician", ResponsibleID: 10,
	})
	require.NoError(t, err)
	assert.InDelta(t, *e.repo.rules.Lat, r.StartLat, 1e-9)
	assert.Contains(t, r.StartAddress, "Av. Sete de Setembro")
}

func TestResolveStartWithoutCreating(t *testing.T) {
	e := newEnv()
	e.seedTechnician(10)
	uc := NewCreateRoute(e.repo, nil, e.audit, logging.Nop())

	result, err := uc.ResolveStart(context.Background(), 1, "technician", 10)
	require.NoError(t, err)
	assert.Equal(t, "Técnico", result.ResponsibleName)
	assert.InDelta(t, -25.4284, result.Lat, 1e-9)
	assert.Empty(t, e.repo.routes)
}

// ======================================================
// ADD / REMOVE / UNDO
// ======================================================

func TestAddStops(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101)

	require.Len(t, r.Stops, 2)
	assert.Equal(t, 1, r.Stops[0].Order)
	assert.Equal(t, 2, r.Stops[1].Order)
	assert.Equal(t, 2, r.StopsCount)
	assert.False(t, r.MetricsStale)
	assert.EqualValues(t, 1, r.Version)
	assert.Equal(t, 2000, r.DistanceTotalM)
}

func TestAddStopsRejectsDuplicate(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.addStops(t, r.ID, testDate, 100)

	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r.ID, AppointmentIDs: []uint{100},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInRoute))
}

func TestAddStopsRejectsAppointmentInAnotherRoute(t *testing.T) {
	e := newEnv()
	r1 := e.createRoute(t, testDate)
	e.addStops(t, r1.ID, testDate, 100)

	r2 := e.createRoute(t, testDate)
	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r2.ID, AppointmentIDs: []uint{100},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInRoute))
}

func TestAddStopsRejectsOtherDate(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.seedAppointment(100, "2026-09-11")

	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r.ID, AppointmentIDs: []uint{100},
	})
	assert.True(t, httperr.IsBusiness(err, "appointment_on_other_date"))
}

func TestAddStopsVersionConflict(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.seedAppointment(100, testDate)

	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	stale := uint(99)
	_, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r.ID, AppointmentIDs: []uint{100}, FromVersion: &stale,
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeVersionConflict))
}

func TestRemoveStopAndUndo(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101, 102)

	removeUC := NewRemoveStop(e.repo, e.provider, e.undo, e.lock, e.audit, logging.Nop())
	middle := r.Stops[1]
	r2, err := removeUC.Execute(context.Background(), RemoveStopInput{
		CompanyID: 1, RouteID: r.ID, StopID: middle.ID,
	})
	require.NoError(t, err)
	require.Len(t, r2.Stops, 2)
	assert.Equal(t, []int{1, 2}, []int{r2.Stops[0].Order, r2.Stops[1].Order})

	undoUC := NewUndoRemove(e.repo, e.provider, e.undo, e.lock, e.audit, logging.Nop())
	r3, err := undoUC.Execute(context.Background(), UndoRemoveInput{CompanyID: 1, RouteID: r.ID})
	require.NoError(t, err)
	require.Len(t, r3.Stops, 3)
	assert.Equal(t, middle.AppointmentID, r3.Stops[1].AppointmentID, "volta para a posição antiga")

	// Slot consumido: segundo undo não tem o que desfazer.
	_, err = undoUC.Execute(context.Background(), UndoRemoveInput{CompanyID: 1, RouteID: r.ID})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNothingToUndo))
}

func TestRemoveUnknownStop(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)

	uc := NewRemoveStop(e.repo, e.provider, e.undo, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), RemoveStopInput{
		CompanyID: 1, RouteID: r.ID, StopID: uuid.NewString(),
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotFound))
}

func TestUndoRejectedWhenAppointmentTakenElsewhere(t *testing.T) {
	e := newEnv()
	r1 := e.createRoute(t, testDate)
	r1 = e.addStops(t, r1.ID, testDate, 100)

	removeUC := NewRemoveStop(e.repo, e.provider, e.undo, e.lock, e.audit, logging.Nop())
	_, err := removeUC.Execute(context.Background(), RemoveStopInput{
		CompanyID: 1, RouteID: r1.ID, StopID: r1.Stops[0].ID,
	})
	require.NoError(t, err)

	// O agendamento migra para outra rota antes do undo.
	r2 := e.createRoute(t, testDate)
	e.addStops(t, r2.ID, testDate, 100)

	undoUC := NewUndoRemove(e.repo, e.provider, e.undo, e.lock, e.audit, logging.Nop())
	_, err = undoUC.Execute(context.Background(), UndoRemoveInput{CompanyID: 1, RouteID: r1.ID})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInRoute))
}

func TestAppointmentFreeAfterRouteFinalized(t *testing.T) {
	e := newEnv()
	r1 := e.createRoute(t, testDate)
	e.addStops(t, r1.ID, testDate, 100)

	statusUC := NewSetStatus(e.repo, e.lock, e.audit, logging.Nop())
	_, err := statusUC.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r1.ID, NewStatus: "confirmado",
	})
	require.NoError(t, err)

	// Enquanto a rota está ativa o agendamento segue indisponível.
	r2 := e.createRoute(t, testDate)
	addUC := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err = addUC.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r2.ID, AppointmentIDs: []uint{100},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyInRoute))

	// Rota finalizada é terminal: o agendamento volta a ficar livre.
	_, err = statusUC.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r1.ID, NewStatus: "finalizado",
	})
	require.NoError(t, err)

	_, err = addUC.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r2.ID, AppointmentIDs: []uint{100},
	})
	require.NoError(t, err)
}

// ======================================================
// REORDER / OPTIMIZE
// ======================================================

func TestReorder(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101, 102)

	ids := []string{r.Stops[2].ID, r.Stops[0].ID, r.Stops[1].ID}
	uc := NewReorder(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	r2, err := uc.Execute(context.Background(), ReorderInput{
		CompanyID: 1, RouteID: r.ID, StopIDs: ids,
	})
	require.NoError(t, err)
	assert.Equal(t, ids, stopIDs(r2))
	assert.Equal(t, []int{1, 2, 3}, []int{r2.Stops[0].Order, r2.Stops[1].Order, r2.Stops[2].Order})
}

func TestReorderRejectsNonPermutation(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101)

	uc := NewReorder(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), ReorderInput{
		CompanyID: 1, RouteID: r.ID, StopIDs: []string{r.Stops[0].ID, r.Stops[0].ID},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNotAPermutation))
}

func TestReorderCommitsEvenWhenMetricsFail(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101)

	e.provider.failRoute = true
	ids := []string{r.Stops[1].ID, r.Stops[0].ID}
	uc := NewReorder(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	r2, err := uc.Execute(context.Background(), ReorderInput{
		CompanyID: 1, RouteID: r.ID, StopIDs: ids,
	})
	require.NoError(t, err)
	assert.Equal(t, ids, stopIDs(r2))
	assert.True(t, r2.MetricsStale, "ordem vale mesmo com métricas defasadas")
}

func TestOptimize(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100, 101, 102)
	originalIDs := stopIDs(r)

	uc := NewOptimize(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	r2, err := uc.Execute(context.Background(), OptimizeInput{CompanyID: 1, RouteID: r.ID})
	require.NoError(t, err)

	// Fake devolve a visita em ordem inversa.
	want := []string{originalIDs[2], originalIDs[1], originalIDs[0]}
	assert.Equal(t, want, stopIDs(r2))
	assert.Equal(t, 7000, r2.DistanceTotalM)
	assert.Equal(t, 900, r2.DurationTotalS)
	assert.False(t, r2.MetricsStale)
}

func TestOptimizeTooFewStops(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	r = e.addStops(t, r.ID, testDate, 100)

	uc := NewOptimize(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), OptimizeInput{CompanyID: 1, RouteID: r.ID})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTooFewStops))
}

func TestOptimizeEndAtStartOverridesRoute(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate) // criada sem roundtrip
	e.addStops(t, r.ID, testDate, 100, 101)

	uc := NewOptimize(e.repo, e.provider, e.lock, e.audit, logging.Nop())

	// Sem override a otimização segue o que a rota definiu na criação.
	_, err := uc.Execute(context.Background(), OptimizeInput{CompanyID: 1, RouteID: r.ID})
	require.NoError(t, err)
	assert.False(t, e.provider.tripRoundtrip)

	// end_at_start da chamada vence a configuração da rota.
	_, err = uc.Execute(context.Background(), OptimizeInput{
		CompanyID: 1, RouteID: r.ID, EndAtStart: ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, e.provider.tripRoundtrip)

	_, err = uc.Execute(context.Background(), OptimizeInput{
		CompanyID: 1, RouteID: r.ID, EndAtStart: ptr(false),
	})
	require.NoError(t, err)
	assert.False(t, e.provider.tripRoundtrip)
}

func TestOptimizeRoundtripRouteDefaults(t *testing.T) {
	e := newEnv()
	e.seedTechnician(10)
	create := NewCreateRoute(e.repo, nil, e.audit, logging.Nop())
	r, err := create.Execute(context.Background(), CreateRouteInput{
		CompanyID: 1, Date: testDate, ResponsibleType: "technician", ResponsibleID: 10,
		Roundtrip: true,
	})
	require.NoError(t, err)
	e.addStops(t, r.ID, testDate, 100, 101)

	uc := NewOptimize(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err = uc.Execute(context.Background(), OptimizeInput{CompanyID: 1, RouteID: r.ID})
	require.NoError(t, err)
	assert.True(t, e.provider.tripRoundtrip, "rota roundtrip otimiza fechando o trajeto por padrão")
}

func TestOptimizeProviderFailure(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.addStops(t, r.ID, testDate, 100, 101)

	e.provider.failTrip = true
	uc := NewOptimize(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), OptimizeInput{CompanyID: 1, RouteID: r.ID})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeProviderError))
}

// ======================================================
// STATUS / DATA
// ======================================================

func TestSetStatusLifecycle(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.addStops(t, r.ID, testDate, 100)

	uc := NewSetStatus(e.repo, e.lock, e.audit, logging.Nop())

	r2, err := uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r.ID, NewStatus: "confirmado",
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmado", r2.Status)

	r3, err := uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r.ID, NewStatus: "finalizado",
	})
	require.NoError(t, err)
	assert.Equal(t, "finalizado", r3.Status)

	// Estado terminal é absorvente.
	_, err = uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r.ID, NewStatus: "draft",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition))
}

func TestConfirmRejectsEmptyRoute(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)

	uc := NewSetStatus(e.repo, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r.ID, NewStatus: "confirmado",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTooFewStops))
}

func TestConfirmRejectsConflictingRoute(t *testing.T) {
	e := newEnv()
	r1 := e.createRoute(t, testDate)
	e.addStops(t, r1.ID, testDate, 100)

	uc := NewSetStatus(e.repo, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r1.ID, NewStatus: "confirmado",
	})
	require.NoError(t, err)

	// Mesma data, mesmo responsável, outra rota.
	r2 := e.createRoute(t, testDate)
	e.addStops(t, r2.ID, testDate, 101)
	_, err = uc.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r2.ID, NewStatus: "confirmado",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeConflictingRoute))
}

func TestMutationRejectedOnTerminalRoute(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.addStops(t, r.ID, testDate, 100)

	statusUC := NewSetStatus(e.repo, e.lock, e.audit, logging.Nop())
	_, err := statusUC.Execute(context.Background(), SetStatusInput{
		CompanyID: 1, RouteID: r.ID, NewStatus: "cancelado",
	})
	require.NoError(t, err)

	e.seedAppointment(101, testDate)
	addUC := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err = addUC.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r.ID, AppointmentIDs: []uint{101},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeRouteNotEditable))
}

func TestChangeDate(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)

	uc := NewChangeDate(e.repo, e.lock, e.audit, logging.Nop())
	r2, err := uc.Execute(context.Background(), ChangeDateInput{
		CompanyID: 1, RouteID: r.ID, NewDate: "2026-09-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-12", r2.Date)

	_, err = uc.Execute(context.Background(), ChangeDateInput{
		CompanyID: 1, RouteID: r.ID, NewDate: "12/09/2026",
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

// ======================================================
// LOCK
// ======================================================

func TestMutationWhileLockedIsBusy(t *testing.T) {
	e := newEnv()
	r := e.createRoute(t, testDate)
	e.seedAppointment(100, testDate)

	release, ok := e.lock.TryAcquire(r.ID)
	require.True(t, ok)
	defer release()

	uc := NewAddStops(e.repo, e.provider, e.lock, e.audit, logging.Nop())
	_, err := uc.Execute(context.Background(), AddStopsInput{
		CompanyID: 1, RouteID: r.ID, AppointmentIDs: []uint{100},
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeRouteBusy))
}
