package geo

import "math"

// Point é uma coordenada geográfica imutável (longitude, latitude).
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// LonLat retorna a coordenada como [lon, lat], a convenção do OSRM.
func (p Point) LonLat() []float64 { return []float64{p.Lon, p.Lat} }

const earthRadiusKm = 6371

// HaversineKm calcula a distância em linha reta entre dois pontos, em km.
// Coordenadas não finitas resultam em +Inf, nunca em candidato aceito.
func HaversineKm(a, b Point) float64 {
	if !finite(a.Lat) || !finite(a.Lon) || !finite(b.Lat) || !finite(b.Lon) {
		return math.Inf(1)
	}

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// MinHaversineKm retorna a menor distância haversine do alvo até qualquer
// ponto da lista. Lista vazia resulta em +Inf.
func MinHaversineKm(points []Point, target Point) float64 {
	min := math.Inf(1)
	for _, p := range points {
		if d := HaversineKm(p, target); d < min {
			min = d
		}
	}
	return min
}

// NearestNeighborOrder ordena os pontos pelo vizinho mais próximo a partir
// de start, a mesma heurística usada para montar a rota do dia antes do
// cálculo de delta de inserção.
func NearestNeighborOrder(start Point, points []Point) []int {
	remaining := make(map[int]struct{}, len(points))
	for i := range points {
		remaining[i] = struct{}{}
	}

	order := make([]int, 0, len(points))
	current := start

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)
		for i := range remaining {
			d := HaversineKm(current, points[i])
			// Empate resolve pelo menor índice para manter determinismo.
			if d < bestDist || (d == bestDist && (best == -1 || i < best)) {
				bestDist = d
				best = i
			}
		}
		order = append(order, best)
		current = points[best]
		delete(remaining, best)
	}

	return order
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
