package routelock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	k := New()

	rel, ok := k.TryAcquire("route-a")
	require.True(t, ok)

	_, ok = k.TryAcquire("route-a")
	assert.False(t, ok, "segunda aquisição da mesma rota deve falhar")

	rel2, ok := k.TryAcquire("route-b")
	assert.True(t, ok, "rotas diferentes não concorrem entre si")
	rel2()

	rel()
	rel3, ok := k.TryAcquire("route-a")
	require.True(t, ok, "lock liberado deve poder ser retomado")
	rel3()
}

func TestReleaseEvictsKey(t *testing.T) {
	k := New()

	for i := 0; i < 100; i++ {
		rel, ok := k.TryAcquire("route-a")
		require.True(t, ok)
		rel()
	}
	rel, ok := k.TryAcquire("route-b")
	require.True(t, ok)

	k.mu.Lock()
	held := len(k.held)
	k.mu.Unlock()
	assert.Equal(t, 1, held, "só rotas com mutação em andamento ficam no mapa")

	rel()
	k.mu.Lock()
	held = len(k.held)
	k.mu.Unlock()
	assert.Zero(t, held, "release remove a chave do mapa")
}
