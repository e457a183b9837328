// Package routelock serializa mutações por rota dentro do processo.
package routelock

import "sync"

// Keyed guarda o conjunto de rotas com mutação em andamento. TryAcquire
// não bloqueia: se outra mutação da mesma rota está em andamento,
// retorna false e o chamador responde route_busy. O release remove a
// chave do conjunto, então o mapa não cresce com rotas já liberadas.
type Keyed struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func New() *Keyed {
	return &Keyed{held: make(map[string]struct{})}
}

// TryAcquire tenta tomar o lock da rota. Quando retorna true, o
// chamador deve chamar a função de release ao terminar.
func (k *Keyed) TryAcquire(key string) (release func(), ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, busy := k.held[key]; busy {
		return nil, false
	}
	k.held[key] = struct{}{}
	return func() {
		k.mu.Lock()
		delete(k.held, key)
		k.mu.Unlock()
	}, true
}
