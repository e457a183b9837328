package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	curitiba := Point{Lon: -49.2654, Lat: -25.4284}
	saoPaulo := Point{Lon: -46.6333, Lat: -23.5505}

	d := HaversineKm(curitiba, saoPaulo)
	assert.InDelta(t, 338, d, 5, "Curitiba-Sao Paulo deve dar ~338km")

	assert.Zero(t, HaversineKm(curitiba, curitiba))
}

func TestHaversineKmNonFinite(t *testing.T) {
	ok := Point{Lon: -49.2, Lat: -25.4}
	bad := Point{Lon: math.NaN(), Lat: -25.4}

	assert.True(t, math.IsInf(HaversineKm(ok, bad), 1))
	assert.True(t, math.IsInf(HaversineKm(bad, ok), 1))
}

func TestMinHaversineKm(t *testing.T) {
	target := Point{Lon: 0, Lat: 0}
	points := []Point{
		{Lon: 10, Lat: 0},
		{Lon: 1, Lat: 0},
		{Lon: 5, Lat: 5},
	}

	min := MinHaversineKm(points, target)
	assert.InDelta(t, HaversineKm(points[1], target), min, 0.0001)

	assert.True(t, math.IsInf(MinHaversineKm(nil, target), 1))
}

func TestNearestNeighborOrder(t *testing.T) {
	start := Point{Lon: 0, Lat: 0}
	points := []Point{
		{Lon: 3, Lat: 0}, // 0
		{Lon: 1, Lat: 0}, // 1
		{Lon: 2, Lat: 0}, // 2
	}

	order := NearestNeighborOrder(start, points)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestNearestNeighborOrderEmpty(t *testing.T) {
	assert.Empty(t, NearestNeighborOrder(Point{}, nil))
}
