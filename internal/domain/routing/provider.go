package routing

import (
	"context"

	"github.com/rotaflow/field-scheduler/internal/geo"
)

// Leg é o custo de deslocamento entre dois pontos.
type Leg struct {
	DistanceM int
	DurationS int
}

// RouteResult é o custo total de percorrer os pontos na ordem dada.
type RouteResult struct {
	DistanceM int
	DurationS int
	Geometry  string
}

// Matrix guarda custos de todas as origens para todos os destinos;
// indexado como [origem][destino].
type Matrix struct {
	DistancesM [][]int
	DurationsS [][]int
}

// TripResult é uma rota otimizada: Order traz os índices dos pontos
// de entrada na ordem de visita (o ponto de partida sempre primeiro).
type TripResult struct {
	Order     []int
	DistanceM int
	DurationS int
	Geometry  string
}

// Provider abstrai o motor de rotas (OSRM em produção).
type Provider interface {
	Route(ctx context.Context, points []geo.Point) (RouteResult, error)
	Table(ctx context.Context, sources, destinations []geo.Point) (Matrix, error)
	Trip(ctx context.Context, points []geo.Point, roundtrip bool) (TripResult, error)
}

// Geocoder resolve um endereço textual em coordenadas.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Point, error)
}

// DistanceCache memoriza custos de pares de pontos entre buscas.
type DistanceCache interface {
	Get(ctx context.Context, origin, destination geo.Point) (Leg, bool)
	Put(ctx context.Context, origin, destination geo.Point, leg Leg)
}
