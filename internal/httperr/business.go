package httperr

import "errors"

// Códigos de negócio usados pelo core de rotas e disponibilidade.
const (
	CodeNotFound          = "not_found"
	CodeAlreadyInRoute    = "already_in_route"
	CodeRouteNotEditable  = "route_not_editable"
	CodeRouteBusy         = "route_busy"
	CodeInvalidTransition = "invalid_transition"
	CodeNotAPermutation   = "not_a_permutation"
	CodeVersionConflict   = "version_conflict"
	CodeProviderError     = "provider_error"
	CodeTooFewStops       = "too_few_stops"
	CodeNothingToUndo     = "nothing_to_undo"
	CodeConflictingRoute  = "conflicting_route"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode extrai o código de negócio de um erro, ou "" se não houver.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
