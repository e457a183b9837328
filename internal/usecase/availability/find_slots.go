package availability

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/rotaflow/field-scheduler/internal/domain/availability"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/timezone"
)

// Ponto de partida quando nem o responsável nem a empresa têm
// endereço geocodificado (centro de Curitiba).
var fallbackStart = geo.Point{Lon: -49.2733, Lat: -25.4284}

// ======================================================
// USE CASE
// ======================================================

// FindSlots varre os próximos dias e emite, um a um, os pares
// (dia, responsável) com capacidade para o serviço pedido. O emit
// alimenta o stream SSE; erro do emit interrompe a varredura.
type FindSlots struct {
	repo     domain.Repository
	provider routing.Provider
	cache    routing.DistanceCache
	log      zerolog.Logger

	maxDays       int
	maxResultDays int
	outageLimit   int
}

func NewFindSlots(
	repo domain.Repository,
	provider routing.Provider,
	cache routing.DistanceCache,
	log zerolog.Logger,
	maxDays int,
	maxResultDays int,
	outageLimit int,
) *FindSlots {
	return &FindSlots{
		repo:          repo,
		provider:      provider,
		cache:         cache,
		log:           log,
		maxDays:       maxDays,
		maxResultDays: maxResultDays,
		outageLimit:   outageLimit,
	}
}

// candidate é um responsável elegível com o que a varredura precisa
// já resolvido.
type candidate struct {
	typ         string
	id          uint
	name        string
	workDays    []string
	capacityMin int
	start       geo.Point
}

type respKey struct {
	typ string
	id  uint
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *FindSlots) Execute(
	ctx context.Context,
	in domain.SearchInput,
	emit func(domain.Slot) error,
) error {

	// --------------------------------------------------
	// 1️⃣ Empresa, regras e cadastros
	// --------------------------------------------------
	company, err := uc.repo.GetCompany(ctx, in.CompanyID)
	if err != nil {
		return httperr.ErrBusiness("company_not_found")
	}

	rules, err := uc.repo.GetBusinessRules(ctx, in.CompanyID)
	if err != nil {
		return httperr.ErrBusiness("business_rules_not_found")
	}

	service, err := uc.repo.GetService(ctx, in.CompanyID, in.ServiceID)
	if err != nil || !service.Active {
		return httperr.ErrBusiness("service_not_found")
	}

	client, err := uc.repo.GetClient(ctx, in.CompanyID, in.ClientID)
	if err != nil {
		return httperr.ErrBusiness("client_not_found")
	}
	if client.Lat == nil || client.Lon == nil {
		return httperr.ErrBusiness("client_not_geocoded")
	}
	clientPoint := geo.Point{Lon: *client.Lon, Lat: *client.Lat}

	loc := timezone.Location(company.Timezone)

	// --------------------------------------------------
	// 2️⃣ Janela de varredura
	// --------------------------------------------------
	now := timezone.NowIn(company.Timezone)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	if in.StartDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", in.StartDate, loc)
		if err != nil {
			return httperr.ErrBusiness("invalid_start_date")
		}
		if parsed.After(start) {
			start = parsed
		}
	}

	// --------------------------------------------------
	// 3️⃣ Responsáveis elegíveis
	// --------------------------------------------------
	candidates, teamMembers, techTeams, err := uc.loadCandidates(ctx, in.CompanyID, service.ID, rules)
	if err != nil {
		return err
	}
	candidates = filterResponsible(candidates, in.TechnicianID, in.TeamID)
	if len(candidates) == 0 {
		return nil
	}

	// --------------------------------------------------
	// 4️⃣ Varredura dia a dia
	// --------------------------------------------------
	resultDays := 0
	outages := 0

	for offset := 0; offset < uc.maxDays && resultDays < uc.maxResultDays; offset++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		day := start.AddDate(0, 0, offset)
		date := day.Format("2006-01-02")

		appointments, err := uc.repo.ListAppointmentsForDate(ctx, in.CompanyID, date)
		if err != nil {
			return err
		}

		used := usedMinutes(appointments, teamMembers, techTeams)

		var slots []domain.Slot
		for _, cand := range candidates {
			if err := ctx.Err(); err != nil {
				return err
			}

			if !schedule.IsWorkingDay(cand.workDays, day) {
				continue
			}

			usedMin := used[respKey{cand.typ, cand.id}]
			available := cand.capacityMin - usedMin
			if available < service.DurationMin {
				continue
			}

			leg, distanceType, ok, err := uc.candidateLeg(ctx, cand, clientPoint, appointments, rules)
			if err != nil {
				outages++
				uc.log.Warn().Err(err).
					Str("responsible", fmt.Sprintf("%s:%d", cand.typ, cand.id)).
					Str("date", date).
					Msg("distance lookup failed, skipping candidate")
				if uc.outageLimit > 0 && outages >= uc.outageLimit {
					return httperr.ErrBusiness("provider_error")
				}
				continue
			}
			outages = 0
			if !ok {
				continue
			}

			slots = append(slots, domain.Slot{
				Date:             date,
				ResponsibleType:  cand.typ,
				ResponsibleID:    cand.id,
				ResponsibleName:  cand.name,
				DistanceKm:       float64(leg.DistanceM) / 1000,
				DurationMin:      (leg.DurationS + 59) / 60,
				DistanceType:     distanceType,
				TotalMinutes:     cand.capacityMin,
				UsedMinutes:      usedMin,
				AvailableMinutes: available,
			})
		}

		if len(slots) == 0 {
			continue
		}

		// Mais perto primeiro; empate prefere técnico sobre equipe e
		// depois o menor ID.
		sort.Slice(slots, func(i, j int) bool {
			a, b := slots[i], slots[j]
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
			if a.ResponsibleType != b.ResponsibleType {
				return a.ResponsibleType == domain.ResponsibleTechnician
			}
			return a.ResponsibleID < b.ResponsibleID
		})

		for _, s := range slots {
			if err := emit(s); err != nil {
				return err
			}
		}
		resultDays++
	}

	return nil
}

// ======================================================
// CANDIDATOS
// ======================================================

func (uc *FindSlots) loadCandidates(
	ctx context.Context,
	companyID uint,
	serviceID uint,
	rules *models.BusinessRules,
) ([]candidate, map[uint][]uint, map[uint][]uint, error) {

	techs, err := uc.repo.ListActiveTechnicians(ctx, companyID)
	if err != nil {
		return nil, nil, nil, err
	}
	teams, err := uc.repo.ListActiveTeams(ctx, companyID)
	if err != nil {
		return nil, nil, nil, err
	}

	teamMembers := make(map[uint][]uint, len(teams))
	techTeams := make(map[uint][]uint)
	for _, t := range teams {
		for _, m := range t.Members {
			teamMembers[t.ID] = append(teamMembers[t.ID], m.TechnicianID)
			techTeams[m.TechnicianID] = append(techTeams[m.TechnicianID], t.ID)
		}
	}

	var out []candidate
	for _, t := range techs {
		if !servesService(t.ServiceIDs, serviceID) {
			continue
		}
		out = append(out, candidate{
			typ:         domain.ResponsibleTechnician,
			id:          t.ID,
			name:        t.Name,
			workDays:    workDaysOrDefault(t.WorkDays),
			capacityMin: shiftCapacityMin(t.ShiftStart, t.ShiftEnd, t.LunchMinutes, rules),
			start:       resolveStart(t.Lat, t.Lon, rules),
		})
	}
	for _, t := range teams {
		if !servesService(t.ServiceIDs, serviceID) {
			continue
		}
		out = append(out, candidate{
			typ:         domain.ResponsibleTeam,
			id:          t.ID,
			name:        t.Name,
			workDays:    workDaysOrDefault(t.WorkDays),
			capacityMin: shiftCapacityMin(t.ShiftStart, t.ShiftEnd, t.LunchMinutes, rules),
			start:       resolveStart(t.Lat, t.Lon, rules),
		})
	}

	return out, teamMembers, techTeams, nil
}

func servesService(serviceIDs []uint, serviceID uint) bool {
	if len(serviceIDs) == 0 {
		return true
	}
	for _, id := range serviceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

func workDaysOrDefault(days []string) []string {
	if len(days) == 0 {
		return schedule.DefaultWorkDays()
	}
	return days
}

// hmToMinutes aceita "08:00" e devolve minutos desde meia-noite;
// formato inválido cai em -1 e o chamador usa o padrão.
func hmToMinutes(hm string) int {
	parts := strings.SplitN(hm, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

func shiftCapacityMin(start, end string, lunch int, rules *models.BusinessRules) int {
	s, e := hmToMinutes(start), hmToMinutes(end)
	if s < 0 || e <= s {
		s, e = hmToMinutes(rules.DefaultShiftStart), hmToMinutes(rules.DefaultShiftEnd)
	}
	if s < 0 || e <= s {
		s, e = 8*60, 18*60
	}
	if lunch <= 0 {
		lunch = rules.DefaultLunchMinutes
	}
	total := e - s - lunch
	if total < 0 {
		return 0
	}
	return total
}

func resolveStart(lat, lon *float64, rules *models.BusinessRules) geo.Point {
	if lat != nil && lon != nil {
		return geo.Point{Lon: *lon, Lat: *lat}
	}
	if rules.Lat != nil && rules.Lon != nil {
		return geo.Point{Lon: *rules.Lon, Lat: *rules.Lat}
	}
	return fallbackStart
}

// ======================================================
// CAPACIDADE USADA
// ======================================================

// usedMinutes soma os minutos já agendados no dia por responsável.
// Agendamento de equipe bloqueia também cada membro; agendamento de
// técnico bloqueia as equipes das quais ele participa.
func usedMinutes(
	appointments []models.Appointment,
	teamMembers map[uint][]uint,
	techTeams map[uint][]uint,
) map[respKey]int {

	used := make(map[respKey]int)
	for _, ap := range appointments {
		dur := ap.DurationMin
		if dur <= 0 {
			continue
		}

		if ap.TechnicianID != nil {
			used[respKey{domain.ResponsibleTechnician, *ap.TechnicianID}] += dur
			for _, teamID := range techTeams[*ap.TechnicianID] {
				used[respKey{domain.ResponsibleTeam, teamID}] += dur
			}
		}
		if ap.TeamID != nil {
			used[respKey{domain.ResponsibleTeam, *ap.TeamID}] += dur
			for _, techID := range teamMembers[*ap.TeamID] {
				used[respKey{domain.ResponsibleTechnician, techID}] += dur
			}
		}
	}
	return used
}

// ======================================================
// DISTÂNCIA
// ======================================================

// filterResponsible restringe os candidatos quando a busca pediu um
// responsável explícito.
func filterResponsible(candidates []candidate, technicianID, teamID *uint) []candidate {
	if technicianID == nil && teamID == nil {
		return candidates
	}
	var out []candidate
	for _, cand := range candidates {
		if technicianID != nil && cand.typ == domain.ResponsibleTechnician && cand.id == *technicianID {
			out = append(out, cand)
		}
		if teamID != nil && cand.typ == domain.ResponsibleTeam && cand.id == *teamID {
			out = append(out, cand)
		}
	}
	return out
}

// candidateLeg mede o custo de atender o cliente. O modo é decidido
// pelo dia do candidato: sem paradas mede partindo da base; com
// paradas mede o menor custo extra de encaixe no trajeto. Retorna
// ok=false quando o candidato cai fora dos limites das regras.
func (uc *FindSlots) candidateLeg(
	ctx context.Context,
	cand candidate,
	client geo.Point,
	appointments []models.Appointment,
	rules *models.BusinessRules,
) (routing.Leg, string, bool, error) {

	stops := candidateStops(cand, appointments)

	if len(stops) == 0 {
		if tooFarStraightLine(geo.HaversineKm(cand.start, client), rules) {
			return routing.Leg{}, "", false, nil
		}
		leg, err := uc.leg(ctx, cand.start, client)
		if err != nil {
			return routing.Leg{}, "", false, err
		}
		return leg, domain.DistanceFromBase, withinRouteLimit(leg, rules), nil
	}

	// between_points: pré-filtro pela menor distância em linha reta
	// até qualquer ponto já visitado no dia.
	refs := append([]geo.Point{cand.start}, stops...)
	if tooFarStraightLine(geo.MinHaversineKm(refs, client), rules) {
		return routing.Leg{}, "", false, nil
	}

	leg, err := uc.insertionLeg(ctx, cand.start, stops, client)
	if err != nil {
		return routing.Leg{}, "", false, err
	}
	return leg, domain.DistanceBetweenPoints, withinRouteLimit(leg, rules), nil
}

func candidateStops(cand candidate, appointments []models.Appointment) []geo.Point {
	var out []geo.Point
	for _, ap := range appointments {
		if ap.Lat == nil || ap.Lon == nil {
			continue
		}
		switch cand.typ {
		case domain.ResponsibleTechnician:
			if ap.TechnicianID == nil || *ap.TechnicianID != cand.id {
				continue
			}
		case domain.ResponsibleTeam:
			if ap.TeamID == nil || *ap.TeamID != cand.id {
				continue
			}
		}
		out = append(out, geo.Point{Lon: *ap.Lon, Lat: *ap.Lat})
	}
	return out
}

func tooFarStraightLine(km float64, rules *models.BusinessRules) bool {
	return rules.MaxDistanceHaversineKm > 0 && km > rules.MaxDistanceHaversineKm
}

func withinRouteLimit(leg routing.Leg, rules *models.BusinessRules) bool {
	if rules.MaxDistanceRouteKm <= 0 {
		return true
	}
	return float64(leg.DistanceM)/1000 <= rules.MaxDistanceRouteKm
}

// insertionLeg ordena as paradas do dia por vizinho mais próximo a
// partir da base e retorna o menor custo extra de encaixar o cliente
// em alguma posição do trajeto (incluindo depois da última parada).
// Uma única consulta de matriz cobre todos os pares necessários.
func (uc *FindSlots) insertionLeg(
	ctx context.Context,
	start geo.Point,
	stops []geo.Point,
	client geo.Point,
) (routing.Leg, error) {

	order := geo.NearestNeighborOrder(start, stops)
	points := make([]geo.Point, 0, len(stops)+2)
	points = append(points, start)
	for _, idx := range order {
		points = append(points, stops[idx])
	}
	points = append(points, client)

	m, err := uc.provider.Table(ctx, points, points)
	if err != nil {
		return routing.Leg{}, err
	}
	if len(m.DistancesM) != len(points) || len(m.DurationsS) != len(points) {
		return routing.Leg{}, fmt.Errorf("tabela de distâncias incompleta: %d linhas para %d pontos",
			len(m.DistancesM), len(points))
	}

	c := len(points) - 1 // índice do cliente
	best := routing.Leg{DistanceM: -1}

	for i := 0; i < c; i++ {
		delta := routing.Leg{
			DistanceM: m.DistancesM[i][c],
			DurationS: m.DurationsS[i][c],
		}
		if i+1 < c {
			delta.DistanceM += m.DistancesM[c][i+1] - m.DistancesM[i][i+1]
			delta.DurationS += m.DurationsS[c][i+1] - m.DurationsS[i][i+1]
			if delta.DistanceM < 0 {
				delta.DistanceM = 0
			}
			if delta.DurationS < 0 {
				delta.DurationS = 0
			}
		}

		if best.DistanceM < 0 || delta.DistanceM < best.DistanceM {
			best = delta
		}
	}

	return best, nil
}

// leg consulta o cache antes do provedor; o resultado novo é gravado
// de volta para as próximas varreduras.
func (uc *FindSlots) leg(ctx context.Context, a, b geo.Point) (routing.Leg, error) {
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, a, b); ok {
			return cached, nil
		}
	}

	res, err := uc.provider.Route(ctx, []geo.Point{a, b})
	if err != nil {
		return routing.Leg{}, err
	}

	leg := routing.Leg{DistanceM: res.DistanceM, DurationS: res.DurationS}
	if uc.cache != nil {
		uc.cache.Put(ctx, a, b, leg)
	}
	return leg, nil
}
