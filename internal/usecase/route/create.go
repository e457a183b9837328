package route

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/audit"
	availability "github.com/rotaflow/field-scheduler/internal/domain/availability"
	domain "github.com/rotaflow/field-scheduler/internal/domain/route"
	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/httperr"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// Partida usada quando nada foi geocodificado (centro de Curitiba).
var fallbackStart = geo.Point{Lon: -49.2733, Lat: -25.4284}

// ======================================================
// INPUT
// ======================================================

type CreateRouteInput struct {
	CompanyID uint
	UserID    *uint

	Date            string
	ResponsibleType string
	ResponsibleID   uint
	Roundtrip       bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateRoute struct {
	repo     domain.Repository
	geocoder routing.Geocoder
	audit    *audit.Dispatcher
	log      zerolog.Logger
}

func NewCreateRoute(
	repo domain.Repository,
	geocoder routing.Geocoder,
	auditDispatcher *audit.Dispatcher,
	log zerolog.Logger,
) *CreateRoute {
	return &CreateRoute{
		repo:     repo,
		geocoder: geocoder,
		audit:    auditDispatcher,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateRoute) Execute(
	ctx context.Context,
	in CreateRouteInput,
) (*models.Route, error) {

	// --------------------------------------------------
	// 1️⃣ Data e responsável
	// --------------------------------------------------
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	start, name, err := uc.resolveResponsible(ctx, in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Número de exibição
	// --------------------------------------------------
	displayNumber, err := uc.repo.NextDisplayNumber(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Criação
	// --------------------------------------------------
	r := &models.Route{
		ID:              uuid.NewString(),
		CompanyID:       in.CompanyID,
		DisplayNumber:   displayNumber,
		Date:            in.Date,
		ResponsibleType: in.ResponsibleType,
		ResponsibleID:   in.ResponsibleID,
		Status:          string(domain.InitialStatus()),
		StartAddress:    start.address,
		StartLat:        start.point.Lat,
		StartLon:        start.point.Lon,
		Roundtrip:       in.Roundtrip,
		MetricsStale:    false,
	}

	if err := uc.repo.CreateRoute(ctx, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID:   in.CompanyID,
		RouteID:     r.ID,
		UserID:      in.UserID,
		Action:      "route_created",
		Description: "rota criada para " + name,
		Metadata: map[string]any{
			"date":             in.Date,
			"responsible_type": in.ResponsibleType,
			"responsible_id":   in.ResponsibleID,
		},
	})

	return r, nil
}

// ======================================================
// PONTO DE PARTIDA
// ======================================================

type startPoint struct {
	point   geo.Point
	address string
}

// StartPointResult é a partida resolvida exposta ao endpoint de
// consulta, sem criar rota nenhuma.
type StartPointResult struct {
	ResponsibleName string  `json:"responsible_name"`
	Address         string  `json:"address"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
}

// ResolveStart aplica a mesma cadeia de resolução da criação de rota e
// devolve só o ponto de partida.
func (uc *CreateRoute) ResolveStart(
	ctx context.Context,
	companyID uint,
	responsibleType string,
	responsibleID uint,
) (*StartPointResult, error) {
	start, name, err := uc.resolveResponsible(ctx, CreateRouteInput{
		CompanyID:       companyID,
		ResponsibleType: responsibleType,
		ResponsibleID:   responsibleID,
	})
	if err != nil {
		return nil, err
	}
	return &StartPointResult{
		ResponsibleName: name,
		Address:         start.address,
		Lat:             start.point.Lat,
		Lon:             start.point.Lon,
	}, nil
}

// resolveResponsible valida o responsável e resolve a partida na
// ordem: coordenadas do responsável, endereço geocodificado do
// responsável, endereço da empresa, fallback fixo.
func (uc *CreateRoute) resolveResponsible(
	ctx context.Context,
	in CreateRouteInput,
) (startPoint, string, error) {

	var (
		name    string
		lat     *float64
		lon     *float64
		address string
	)

	switch in.ResponsibleType {
	case availability.ResponsibleTechnician:
		tech, err := uc.repo.GetTechnician(ctx, in.CompanyID, in.ResponsibleID)
		if err != nil {
			return startPoint{}, "", httperr.ErrBusiness("responsible_not_found")
		}
		name = tech.Name
		lat, lon = tech.Lat, tech.Lon
		address = formatAddress(tech.Logradouro, tech.Numero, tech.Bairro, tech.Cidade, tech.Estado)

	case availability.ResponsibleTeam:
		team, err := uc.repo.GetTeam(ctx, in.CompanyID, in.ResponsibleID)
		if err != nil {
			return startPoint{}, "", httperr.ErrBusiness("responsible_not_found")
		}
		name = team.Name
		lat, lon = team.Lat, team.Lon
		address = formatAddress(team.Logradouro, team.Numero, team.Bairro, team.Cidade, team.Estado)

	default:
		return startPoint{}, "", httperr.ErrBusiness("invalid_responsible_type")
	}

	if lat != nil && lon != nil {
		return startPoint{point: geo.Point{Lon: *lon, Lat: *lat}, address: address}, name, nil
	}

	if address != "" && uc.geocoder != nil {
		p, err := uc.geocoder.Geocode(ctx, address)
		if err == nil {
			return startPoint{point: p, address: address}, name, nil
		}
		uc.log.Warn().Err(err).Str("address", address).Msg("responsible geocode failed, falling back")
	}

	rules, err := uc.repo.GetBusinessRules(ctx, in.CompanyID)
	if err == nil {
		if rules.Lat != nil && rules.Lon != nil {
			addr := formatAddress(rules.Logradouro, rules.Numero, rules.Bairro, rules.Cidade, rules.Estado)
			return startPoint{point: geo.Point{Lon: *rules.Lon, Lat: *rules.Lat}, address: addr}, name, nil
		}
	}

	return startPoint{point: fallbackStart, address: "Curitiba - PR"}, name, nil
}
