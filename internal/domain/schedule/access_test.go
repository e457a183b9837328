package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// America/Sao_Paulo fica em UTC-3 o ano todo.
func utcAt(day, hour, min int) time.Time {
	return time.Date(2026, 1, day, hour, min, 0, 0, time.UTC)
}

func mondaySchedule(windows ...TimeWindow) *AccessSchedule {
	return &AccessSchedule{
		Name:    "comercial",
		Windows: map[string][]TimeWindow{"monday": windows},
	}
}

func TestIsAccessAllowedNilSchedule(t *testing.T) {
	assert.True(t, IsAccessAllowed(nil, time.Now()))
	assert.True(t, IsAccessAllowed(&AccessSchedule{}, time.Now()))
}

func TestIsAccessAllowedWindow(t *testing.T) {
	s := mondaySchedule(TimeWindow{Start: "08:00", End: "12:00"})

	// 11:30 UTC em 2026-01-05 = 08:30 de segunda em Sao Paulo.
	assert.True(t, IsAccessAllowed(s, utcAt(5, 11, 30)))

	// Limites são inclusivos nas duas pontas.
	assert.True(t, IsAccessAllowed(s, utcAt(5, 11, 0)))  // 08:00 local
	assert.True(t, IsAccessAllowed(s, utcAt(5, 15, 0)))  // 12:00 local
	assert.False(t, IsAccessAllowed(s, utcAt(5, 15, 1))) // 12:01 local
	assert.False(t, IsAccessAllowed(s, utcAt(5, 10, 59)))
}

func TestIsAccessAllowedMultipleWindows(t *testing.T) {
	s := mondaySchedule(
		TimeWindow{Start: "08:00", End: "12:00"},
		TimeWindow{Start: "13:00", End: "18:00"},
	)

	assert.False(t, IsAccessAllowed(s, utcAt(5, 15, 30))) // 12:30 local, almoço
	assert.True(t, IsAccessAllowed(s, utcAt(5, 16, 30)))  // 13:30 local
}

func TestIsAccessAllowedDayWithoutWindows(t *testing.T) {
	s := mondaySchedule(TimeWindow{Start: "08:00", End: "18:00"})

	// 2026-01-06 é terça e não tem janelas: acesso negado.
	assert.False(t, IsAccessAllowed(s, utcAt(6, 14, 0)))
}

func TestIsAccessAllowedUsesBusinessTimezone(t *testing.T) {
	s := mondaySchedule(TimeWindow{Start: "20:00", End: "23:00"})

	// 01:00 UTC de terça ainda é 22:00 de segunda no fuso do negócio.
	assert.True(t, IsAccessAllowed(s, utcAt(6, 1, 0)))
}

func TestMinutesUntilEndOfShift(t *testing.T) {
	s := mondaySchedule(TimeWindow{Start: "08:00", End: "12:00"})

	left := MinutesUntilEndOfShift(s, utcAt(5, 11, 30)) // 08:30 local
	require.NotNil(t, left)
	assert.Equal(t, 210, *left)

	// Fora de qualquer janela não há expediente corrente.
	assert.Nil(t, MinutesUntilEndOfShift(s, utcAt(5, 16, 0)))
	assert.Nil(t, MinutesUntilEndOfShift(nil, utcAt(5, 11, 30)))
}
