package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaflow/field-scheduler/internal/logging"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Rua XV de Novembro, Curitiba", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`[{"lat":"-25.4284","lon":"-49.2733"}]`))
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, logging.Nop())
	p, err := n.Geocode(context.Background(), "  Rua XV de Novembro,   Curitiba ")
	require.NoError(t, err)
	assert.InDelta(t, -25.4284, p.Lat, 1e-9)
	assert.InDelta(t, -49.2733, p.Lon, 1e-9)
}

func TestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, logging.Nop())
	_, err := n.Geocode(context.Background(), "endereço inexistente 123456")
	assert.ErrorContains(t, err, "no results")
}
