package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/rotaflow/field-scheduler/internal/domain/availability"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/logging"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/timezone"
)

// ======================================================
// FAKES
// ======================================================

type fakeRepo struct {
	company      models.Company
	rules        models.BusinessRules
	service      models.Service
	client       models.Client
	technicians  []models.Technician
	teams        []models.Team
	appointments map[string][]models.Appointment
}

func (f *fakeRepo) GetCompany(_ context.Context, _ uint) (*models.Company, error) {
	return &f.company, nil
}

func (f *fakeRepo) GetBusinessRules(_ context.Context, _ uint) (*models.BusinessRules, error) {
	return &f.rules, nil
}

func (f *fakeRepo) GetService(_ context.Context, _, _ uint) (*models.Service, error) {
	return &f.service, nil
}

func (f *fakeRepo) GetClient(_ context.Context, _, _ uint) (*models.Client, error) {
	return &f.client, nil
}

func (f *fakeRepo) ListActiveTechnicians(_ context.Context, _ uint) ([]models.Technician, error) {
	return f.technicians, nil
}

func (f *fakeRepo) ListActiveTeams(_ context.Context, _ uint) ([]models.Team, error) {
	return f.teams, nil
}

func (f *fakeRepo) ListAppointmentsForDate(_ context.Context, _ uint, date string) ([]models.Appointment, error) {
	return f.appointments[date], nil
}

// fakeProvider responde legs com distância fixa; com geoAware ligado,
// deriva a distância da linha reta entre os pontos, útil para verificar
// qual par de pontos o use case realmente consultou.
type fakeProvider struct {
	routeCalls int
	tableCalls int
	failAll    bool
	distanceM  int
	geoAware   bool
}

func (f *fakeProvider) pairM(a, b geo.Point) int {
	if f.geoAware {
		return int(geo.HaversineKm(a, b)*1000 + 0.5)
	}
	if f.distanceM != 0 {
		return f.distanceM
	}
	return 5000
}

func (f *fakeProvider) Route(_ context.Context, points []geo.Point) (routing.RouteResult, error) {
	f.routeCalls++
	if f.failAll {
		return routing.RouteResult{}, errors.New("connection refused")
	}
	d := f.pairM(points[0], points[len(points)-1])
	return routing.RouteResult{DistanceM: d, DurationS: d / 10}, nil
}

func (f *fakeProvider) Table(_ context.Context, sources, destinations []geo.Point) (routing.Matrix, error) {
	f.tableCalls++
	if f.failAll {
		return routing.Matrix{}, errors.New("connection refused")
	}
	m := routing.Matrix{
		DistancesM: make([][]int, len(sources)),
		DurationsS: make([][]int, len(sources)),
	}
	for i, src := range sources {
		m.DistancesM[i] = make([]int, len(destinations))
		m.DurationsS[i] = make([]int, len(destinations))
		for j, dst := range destinations {
			if src == dst {
				continue
			}
			d := f.pairM(src, dst)
			m.DistancesM[i][j] = d
			m.DurationsS[i][j] = d / 10
		}
	}
	return m, nil
}

func (f *fakeProvider) Trip(_ context.Context, _ []geo.Point, _ bool) (routing.TripResult, error) {
	return routing.TripResult{}, errors.New("not used")
}

// ======================================================
// HELPERS
// ======================================================

func ptr[T any](v T) *T { return &v }

var allDays = []string{"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado"}

func baseRepo() *fakeRepo {
	return &fakeRepo{
		company: models.Company{ID: 1, Timezone: timezone.DefaultTimezone},
		rules: models.BusinessRules{
			CompanyID:              1,
			Lat:                    ptr(-25.4284),
			Lon:                    ptr(-49.2733),
			DefaultShiftStart:      "08:00",
			DefaultShiftEnd:        "18:00",
			DefaultLunchMinutes:    60,
			MaxDistanceHaversineKm: 60,
			MaxDistanceRouteKm:     80,
		},
		service: models.Service{ID: 7, CompanyID: 1, DurationMin: 60, Active: true},
		client: models.Client{
			ID: 3, CompanyID: 1, Name: "Cliente",
			Lat: ptr(-25.4300), Lon: ptr(-49.2700),
		},
		technicians: []models.Technician{{
			ID: 10, CompanyID: 1, Name: "Técnico A", Active: true,
			ShiftStart: "08:00", ShiftEnd: "17:00", LunchMinutes: 60,
			WorkDays: allDays,
			Lat:      ptr(-25.4284), Lon: ptr(-49.2733),
		}},
		appointments: map[string][]models.Appointment{},
	}
}

func tomorrow() string {
	now := timezone.Now()
	return now.AddDate(0, 0, 1).Format("2006-01-02")
}

func newFinder(repo *fakeRepo, p routing.Provider) *FindSlots {
	return NewFindSlots(repo, p, nil, logging.Nop(), 30, 3, 5)
}

func collect(t *testing.T, uc *FindSlots, in domain.SearchInput) []domain.Slot {
	t.Helper()
	var out []domain.Slot
	err := uc.Execute(context.Background(), in, func(s domain.Slot) error {
		out = append(out, s)
		return nil
	})
	require.NoError(t, err)
	return out
}

// ======================================================
// TESTS
// ======================================================

func TestFindSlotsFromBase(t *testing.T) {
	repo := baseRepo()
	uc := newFinder(repo, &fakeProvider{distanceM: 4200})

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})

	require.NotEmpty(t, slots)
	first := slots[0]
	assert.Equal(t, tomorrow(), first.Date)
	assert.Equal(t, domain.ResponsibleTechnician, first.ResponsibleType)
	assert.EqualValues(t, 10, first.ResponsibleID)
	assert.InDelta(t, 4.2, first.DistanceKm, 1e-9)
	// Sem paradas no dia a distância sai da base do responsável.
	assert.Equal(t, domain.DistanceFromBase, first.DistanceType)
	// Turno de 08:00-17:00 com 60 de almoço: 480 de capacidade, nada
	// usado ainda.
	assert.Equal(t, 480, first.TotalMinutes)
	assert.Equal(t, 0, first.UsedMinutes)
	assert.Equal(t, 480, first.AvailableMinutes)
}

func TestFindSlotsCapacityExhausted(t *testing.T) {
	repo := baseRepo()
	// 420 já agendados: sobra exatamente o serviço de 60.
	repo.appointments[tomorrow()] = []models.Appointment{
		{TechnicianID: ptr(uint(10)), DurationMin: 420, ScheduledDate: tomorrow()},
	}
	uc := newFinder(repo, &fakeProvider{})

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})
	require.NotEmpty(t, slots)
	dayOne := slots[0]
	assert.Equal(t, tomorrow(), dayOne.Date)
	assert.Equal(t, 420, dayOne.UsedMinutes)
	assert.Equal(t, 60, dayOne.AvailableMinutes)

	// Com 421 agendados sobram 59 e o primeiro dia fica de fora.
	repo.appointments[tomorrow()][0].DurationMin = 421
	slots = collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})
	require.NotEmpty(t, slots)
	assert.NotEqual(t, tomorrow(), slots[0].Date)
}

func TestFindSlotsTeamBlocksMember(t *testing.T) {
	repo := baseRepo()
	repo.teams = []models.Team{{
		ID: 20, CompanyID: 1, Name: "Equipe Norte", Active: true,
		ShiftStart: "08:00", ShiftEnd: "17:00", LunchMinutes: 60,
		WorkDays: allDays,
		Lat:      ptr(-25.4284), Lon: ptr(-49.2733),
		Members:  []models.TeamMember{{TeamID: 20, TechnicianID: 10}},
	}}
	// Agendamento da equipe consome o dia inteiro do técnico-membro.
	repo.appointments[tomorrow()] = []models.Appointment{
		{TeamID: ptr(uint(20)), DurationMin: 480, ScheduledDate: tomorrow()},
	}
	uc := newFinder(repo, &fakeProvider{})

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})
	for _, s := range slots {
		assert.NotEqual(t, tomorrow(), s.Date, "dia lotado pela equipe não deve aparecer")
	}
}

func TestFindSlotsRestrictsToRequestedTechnician(t *testing.T) {
	repo := baseRepo()
	repo.technicians = append(repo.technicians, models.Technician{
		ID: 11, CompanyID: 1, Name: "Técnico B", Active: true,
		ShiftStart: "08:00", ShiftEnd: "17:00", LunchMinutes: 60,
		WorkDays: allDays,
		Lat:      ptr(-25.4284), Lon: ptr(-49.2733),
	})
	uc := newFinder(repo, &fakeProvider{})

	slots := collect(t, uc, domain.SearchInput{
		CompanyID: 1, ClientID: 3, ServiceID: 7,
		TechnicianID: ptr(uint(11)),
	})

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, domain.ResponsibleTechnician, s.ResponsibleType)
		assert.EqualValues(t, 11, s.ResponsibleID, "busca restrita não deve emitir outros responsáveis")
	}
}

func TestFindSlotsRestrictsToRequestedTeam(t *testing.T) {
	repo := baseRepo()
	repo.teams = []models.Team{{
		ID: 20, CompanyID: 1, Name: "Equipe Norte", Active: true,
		ShiftStart: "08:00", ShiftEnd: "17:00", LunchMinutes: 60,
		WorkDays: allDays,
		Lat:      ptr(-25.4284), Lon: ptr(-49.2733),
	}}
	uc := newFinder(repo, &fakeProvider{})

	slots := collect(t, uc, domain.SearchInput{
		CompanyID: 1, ClientID: 3, ServiceID: 7,
		TeamID: ptr(uint(20)),
	})

	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, domain.ResponsibleTeam, s.ResponsibleType)
		assert.EqualValues(t, 20, s.ResponsibleID)
	}
}

func TestFindSlotsHaversinePrefilterSkipsProvider(t *testing.T) {
	repo := baseRepo()
	// Cliente em São Paulo, base em Curitiba: ~340 km em linha reta.
	repo.client.Lat = ptr(-23.5505)
	repo.client.Lon = ptr(-46.6333)
	p := &fakeProvider{}
	uc := newFinder(repo, p)

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})
	assert.Empty(t, slots)
	assert.Zero(t, p.routeCalls, "pré-filtro deve evitar qualquer chamada ao provedor")
	assert.Zero(t, p.tableCalls)
}

func TestFindSlotsProviderOutage(t *testing.T) {
	repo := baseRepo()
	uc := NewFindSlots(repo, &fakeProvider{failAll: true}, nil, logging.Nop(), 30, 3, 5)

	err := uc.Execute(context.Background(), domain.SearchInput{
		CompanyID: 1, ClientID: 3, ServiceID: 7,
	}, func(domain.Slot) error { return nil })

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeProviderError))
}

func TestFindSlotsEmitErrorStops(t *testing.T) {
	repo := baseRepo()
	uc := newFinder(repo, &fakeProvider{})

	wantErr := errors.New("client gone")
	calls := 0
	err := uc.Execute(context.Background(), domain.SearchInput{
		CompanyID: 1, ClientID: 3, ServiceID: 7,
	}, func(domain.Slot) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestFindSlotsDayWithStopsUsesInsertionDelta(t *testing.T) {
	repo := baseRepo()
	// Parada já agendada a ~150 m do cliente: a busca padrão deve
	// cobrar o desvio de inserção, não a distância base->cliente
	// (~0.38 km em linha reta).
	repo.appointments[tomorrow()] = []models.Appointment{{
		TechnicianID: ptr(uint(10)), DurationMin: 60, ScheduledDate: tomorrow(),
		Lat: ptr(-25.43135), Lon: ptr(-49.2700),
	}}
	p := &fakeProvider{geoAware: true}
	uc := newFinder(repo, p)

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})

	require.NotEmpty(t, slots)
	first := slots[0]
	assert.Equal(t, tomorrow(), first.Date)
	assert.Equal(t, domain.DistanceBetweenPoints, first.DistanceType)
	assert.Less(t, first.DistanceKm, 0.2, "desvio de inserção deve custar menos que a leg base->cliente")
	assert.GreaterOrEqual(t, p.tableCalls, 1, "dia com paradas consulta a matriz, não legs avulsas")
}

func TestFindSlotsInsertionDeltaPicksCheapestGap(t *testing.T) {
	repo := baseRepo()
	repo.appointments[tomorrow()] = []models.Appointment{{
		TechnicianID: ptr(uint(10)), DurationMin: 60, ScheduledDate: tomorrow(),
		Lat: ptr(-25.4400), Lon: ptr(-49.2600),
	}}
	p := &fakeProvider{distanceM: 3000}
	uc := newFinder(repo, p)

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})

	require.NotEmpty(t, slots)
	// Todas as legs custam 3 km: inserir entre base e a parada custa
	// 3 + 3 - 3 = 3 km; anexar ao fim também custa 3 km.
	assert.InDelta(t, 3.0, slots[0].DistanceKm, 1e-9)
	assert.Equal(t, domain.DistanceBetweenPoints, slots[0].DistanceType)
}

func TestFindSlotsRespectsContextCancellation(t *testing.T) {
	repo := baseRepo()
	uc := newFinder(repo, &fakeProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.Execute(ctx, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7},
		func(domain.Slot) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindSlotsSkipsNonWorkingDays(t *testing.T) {
	repo := baseRepo()
	repo.technicians[0].WorkDays = []string{"segunda"}
	uc := newFinder(repo, &fakeProvider{})

	slots := collect(t, uc, domain.SearchInput{CompanyID: 1, ClientID: 3, ServiceID: 7})
	require.NotEmpty(t, slots)
	for _, s := range slots {
		day, err := time.Parse("2006-01-02", s.Date)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, day.Weekday())
	}
}
