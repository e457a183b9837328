package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotaflow/field-scheduler/internal/domain/routing"
	"github.com/rotaflow/field-scheduler/internal/geo"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// Table retorna a matriz de custos de todas as origens para todos os
// destinos. Células nulas na resposta (pontos inalcançáveis) viram erro.
func (c *Client) Table(ctx context.Context, sources, destinations []geo.Point) (routing.Matrix, error) {
	if len(sources) == 0 || len(destinations) == 0 {
		return routing.Matrix{}, errors.New("osrm: table needs sources and destinations")
	}

	all := make([]geo.Point, 0, len(sources)+len(destinations))
	all = append(all, sources...)
	all = append(all, destinations...)

	srcIdx := make([]string, len(sources))
	for i := range sources {
		srcIdx[i] = strconv.Itoa(i)
	}
	dstIdx := make([]string, len(destinations))
	for i := range destinations {
		dstIdx[i] = strconv.Itoa(len(sources) + i)
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s?%s",
		c.baseURL, c.profile, coordPath(all),
		url.Values{
			"sources":      {strings.Join(srcIdx, ";")},
			"destinations": {strings.Join(dstIdx, ";")},
			"annotations":  {"duration,distance"},
		}.Encode(),
	)

	resp, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		return routing.Matrix{}, fmt.Errorf("osrm: table request: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return routing.Matrix{}, fmt.Errorf("osrm: decode table response: %w", err)
	}
	if tr.Code != "Ok" {
		return routing.Matrix{}, fmt.Errorf("osrm: table returned code %q", tr.Code)
	}
	if len(tr.Durations) != len(sources) || len(tr.Distances) != len(sources) {
		return routing.Matrix{}, fmt.Errorf(
			"osrm: table rows do not match sources: durations=%d distances=%d sources=%d",
			len(tr.Durations), len(tr.Distances), len(sources),
		)
	}

	m := routing.Matrix{
		DistancesM: make([][]int, len(sources)),
		DurationsS: make([][]int, len(sources)),
	}
	for i := range sources {
		if len(tr.Durations[i]) != len(destinations) || len(tr.Distances[i]) != len(destinations) {
			return routing.Matrix{}, fmt.Errorf("osrm: table row %d has wrong width", i)
		}
		m.DistancesM[i] = make([]int, len(destinations))
		m.DurationsS[i] = make([]int, len(destinations))
		for j := range destinations {
			dPtr, tPtr := tr.Distances[i][j], tr.Durations[i][j]
			if dPtr == nil || tPtr == nil {
				return routing.Matrix{}, fmt.Errorf("osrm: unreachable pair %d -> %d", i, j)
			}
			m.DistancesM[i][j] = int(math.Round(*dPtr))
			m.DurationsS[i][j] = int(math.Round(*tPtr))
		}
	}

	return m, nil
}
