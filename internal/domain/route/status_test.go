package route

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotaflow/field-scheduler/internal/httperr"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusConfirmado},
		{StatusConfirmado, StatusDraft},
		{StatusDraft, StatusFinalizado},
		{StatusDraft, StatusCancelado},
		{StatusConfirmado, StatusFinalizado},
		{StatusConfirmado, StatusCancelado},
	}
	for _, tc := range allowed {
		assert.NoError(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusFinalizado, StatusDraft},
		{StatusFinalizado, StatusConfirmado},
		{StatusFinalizado, StatusCancelado},
		{StatusCancelado, StatusDraft},
		{StatusCancelado, StatusFinalizado},
		{StatusDraft, StatusDraft},
		{StatusDraft, Status("qualquer")},
	}
	for _, tc := range denied {
		err := CanTransition(tc.from, tc.to)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidTransition),
			"%s -> %s deve ser rejeitado", tc.from, tc.to)
	}
}

func TestCanMutate(t *testing.T) {
	assert.NoError(t, CanMutate(StatusDraft))
	assert.NoError(t, CanMutate(StatusConfirmado))

	for _, s := range []Status{StatusFinalizado, StatusCancelado} {
		err := CanMutate(s)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeRouteNotEditable))
	}
}

func TestValidatePermutation(t *testing.T) {
	current := []string{"a", "b", "c"}

	assert.NoError(t, ValidatePermutation(current, []string{"c", "a", "b"}))
	assert.NoError(t, ValidatePermutation(nil, nil))

	cases := [][]string{
		{"a", "b"},           // faltando
		{"a", "b", "c", "d"}, // sobrando
		{"a", "b", "x"},      // id estranho
		{"a", "a", "b"},      // duplicado
	}
	for _, submitted := range cases {
		err := ValidatePermutation(current, submitted)
		assert.True(t, httperr.IsBusiness(err, httperr.CodeNotAPermutation), "%v", submitted)
	}
}

func TestContiguousOrders(t *testing.T) {
	assert.True(t, ContiguousOrders([]int{1, 2, 3}))
	assert.True(t, ContiguousOrders([]int{3, 1, 2}))
	assert.True(t, ContiguousOrders(nil))

	assert.False(t, ContiguousOrders([]int{1, 2, 4}))
	assert.False(t, ContiguousOrders([]int{0, 1, 2}))
	assert.False(t, ContiguousOrders([]int{1, 1, 2}))
}
