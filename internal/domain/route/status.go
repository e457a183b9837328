package route

import "github.com/rotaflow/field-scheduler/internal/httperr"

// ===============================
// Route Status
// ===============================

type Status string

const (
	StatusDraft      Status = "draft"
	StatusConfirmado Status = "confirmado"
	StatusFinalizado Status = "finalizado"
	StatusCancelado  Status = "cancelado"
)

func InitialStatus() Status {
	return StatusDraft
}

// IsValid reconhece os quatro estados do ciclo de vida.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmado, StatusFinalizado, StatusCancelado:
		return true
	}
	return false
}

// Terminal indica um estado absorvente: a rota vira somente-leitura.
func (s Status) Terminal() bool {
	return s == StatusFinalizado || s == StatusCancelado
}

// Editable indica se mutações de paradas/data são permitidas.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusConfirmado
}

// ===============================
// Transições
// ===============================

// CanTransition valida a mudança de estado. draft e confirmado são
// mutuamente alcançáveis; finalizado e cancelado são absorventes.
func CanTransition(from, to Status) error {
	if !to.IsValid() {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	if from == to {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	if from.Terminal() {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

// CanMutate rejeita mutações de paradas e data fora de draft/confirmado.
func CanMutate(current Status) error {
	if !current.Editable() {
		return httperr.ErrBusiness(httperr.CodeRouteNotEditable)
	}
	return nil
}
