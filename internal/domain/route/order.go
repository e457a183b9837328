package route

import "github.com/rotaflow/field-scheduler/internal/httperr"

// ValidatePermutation exige que submitted seja uma permutação exata dos
// IDs atuais das paradas; qualquer outra coisa deixa a rota intocada.
func ValidatePermutation(current, submitted []string) error {
	if len(current) != len(submitted) {
		return httperr.ErrBusiness(httperr.CodeNotAPermutation)
	}

	seen := make(map[string]struct{}, len(current))
	for _, id := range current {
		seen[id] = struct{}{}
	}

	dup := make(map[string]struct{}, len(submitted))
	for _, id := range submitted {
		if _, ok := seen[id]; !ok {
			return httperr.ErrBusiness(httperr.CodeNotAPermutation)
		}
		if _, ok := dup[id]; ok {
			return httperr.ErrBusiness(httperr.CodeNotAPermutation)
		}
		dup[id] = struct{}{}
	}

	return nil
}

// ContiguousOrders verifica a invariante de ordem: o multiconjunto dos
// valores de order é exatamente {1..n}.
func ContiguousOrders(orders []int) bool {
	seen := make([]bool, len(orders))
	for _, o := range orders {
		if o < 1 || o > len(orders) || seen[o-1] {
			return false
		}
		seen[o-1] = true
	}
	return true
}
