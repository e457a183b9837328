package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
)

type tripResponse struct {
	Code      string `json:"code"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
		TripsIndex    int `json:"trips_index"`
	} `json:"waypoints"`
	Trips []struct {
		Distance float64         `json:"distance"`
		Duration float64         `json:"duration"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"trips"`
}

// Trip resolve o TSP sobre os pontos. O primeiro ponto é sempre a
// partida; sem roundtrip o trajeto termina no último ponto visitado.
func (c *Client) Trip(ctx context.Context, points []geo.Point, roundtrip bool) (routing.TripResult, error) {
	if len(points) < 2 {
		return routing.TripResult{}, errors.New("osrm: trip needs at least two points")
	}

	params := url.Values{
		"source":     {"first"},
		"overview":   {"full"},
		"geometries": {"geojson"},
	}
	if roundtrip {
		params.Set("roundtrip", "true")
	} else {
		params.Set("roundtrip", "false")
	}

	endpoint := fmt.Sprintf("%s/trip/v1/%s/%s?%s",
		c.baseURL, c.profile, coordPath(points), params.Encode(),
	)

	resp, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		return routing.TripResult{}, fmt.Errorf("osrm: trip request: %w", err)
	}
	defer resp.Body.Close()

	var tr tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return routing.TripResult{}, fmt.Errorf("osrm: decode trip response: %w", err)
	}
	if tr.Code != "Ok" || len(tr.Trips) == 0 {
		return routing.TripResult{}, fmt.Errorf("osrm: trip returned code %q", tr.Code)
	}
	if len(tr.Waypoints) != len(points) {
		return routing.TripResult{}, fmt.Errorf(
			"osrm: trip waypoints do not match input: got %d want %d",
			len(tr.Waypoints), len(points),
		)
	}

	// waypoint_index é a posição de visita do ponto de entrada i;
	// invertemos para obter a ordem de visita em índices de entrada.
	order := make([]int, len(points))
	for i, wp := range tr.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= len(points) {
			return routing.TripResult{}, fmt.Errorf("osrm: waypoint index %d out of range", wp.WaypointIndex)
		}
		order[wp.WaypointIndex] = i
	}

	best := tr.Trips[0]
	return routing.TripResult{
		Order:     order,
		DistanceM: int(math.Round(best.Distance)),
		DurationS: int(math.Round(best.Duration)),
		Geometry:  string(best.Geometry),
	}, nil
}
