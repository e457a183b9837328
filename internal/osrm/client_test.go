package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaflow/field-scheduler/internal/geo"
	"github.com/rotaflow/field-scheduler/internal/logging"
)

var testPoints = []geo.Point{
	{Lon: -49.2733, Lat: -25.4284},
	{Lon: -49.2500, Lat: -25.4100},
	{Lon: -49.3000, Lat: -25.4500},
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logging.Nop())
}

func TestRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":12345.6,"duration":987.4,"geometry":{"type":"LineString","coordinates":[]}}]}`))
	})

	res, err := c.Route(context.Background(), testPoints[:2])
	require.NoError(t, err)
	assert.Equal(t, 12346, res.DistanceM)
	assert.Equal(t, 987, res.DurationS)
	assert.Contains(t, res.Geometry, "LineString")
}

func TestRouteRetriesTransientFailure(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":100,"duration":60,"geometry":null}]}`))
	})

	res, err := c.Route(context.Background(), testPoints[:2])
	require.NoError(t, err)
	assert.Equal(t, 100, res.DistanceM)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRouteDoesNotRetryClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Route(context.Background(), testPoints[:2])
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("sources"))
		assert.Equal(t, "1;2", r.URL.Query().Get("destinations"))
		w.Write([]byte(`{"code":"Ok","durations":[[300.2,600.7]],"distances":[[2500.4,5000.9]]}`))
	})

	m, err := c.Table(context.Background(), testPoints[:1], testPoints[1:])
	require.NoError(t, err)
	require.Len(t, m.DistancesM, 1)
	assert.Equal(t, []int{2500, 5001}, m.DistancesM[0])
	assert.Equal(t, []int{300, 601}, m.DurationsS[0])
}

func TestTableUnreachableCell(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"Ok","durations":[[300,null]],"distances":[[2500,null]]}`))
	})

	_, err := c.Table(context.Background(), testPoints[:1], testPoints[1:])
	assert.ErrorContains(t, err, "unreachable")
}

func TestTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("roundtrip"))
		assert.Equal(t, "first", r.URL.Query().Get("source"))
		// Entrada 0 visitada primeiro, 2 em seguida, 1 por último.
		w.Write([]byte(`{"code":"Ok",
			"waypoints":[{"waypoint_index":0},{"waypoint_index":2},{"waypoint_index":1}],
			"trips":[{"distance":9000.2,"duration":1200.6,"geometry":null}]}`))
	})

	res, err := c.Trip(context.Background(), testPoints, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, res.Order)
	assert.Equal(t, 9000, res.DistanceM)
	assert.Equal(t, 1201, res.DurationS)
}
