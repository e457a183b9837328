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

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64         `json:"distance"`
		Duration float64         `json:"duration"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Route percorre os pontos na ordem dada e retorna os totais e a
// geometria GeoJSON do trajeto.
func (c *Client) Route(ctx context.Context, points []geo.Point) (routing.RouteResult, error) {
	if len(points) < 2 {
		return routing.RouteResult{}, errors.New("osrm: route needs at least two points")
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?%s",
		c.baseURL, c.profile, coordPath(points),
		url.Values{
			"overview":   {"full"},
			"geometries": {"geojson"},
		}.Encode(),
	)

	resp, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		return routing.RouteResult{}, fmt.Errorf("osrm: route request: %w", err)
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return routing.RouteResult{}, fmt.Errorf("osrm: decode route response: %w", err)
	}
	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		return routing.RouteResult{}, fmt.Errorf("osrm: route returned code %q", rr.Code)
	}

	best := rr.Routes[0]
	return routing.RouteResult{
		DistanceM: int(math.Round(best.Distance)),
		DurationS: int(math.Round(best.Duration)),
		Geometry:  string(best.Geometry),
	}, nil
}
