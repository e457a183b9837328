package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-01-05 é uma segunda-feira.
func day(d int) time.Time {
	return time.Date(2026, 1, d, 12, 0, 0, 0, time.UTC)
}

func TestIsWorkingDay(t *testing.T) {
	workDays := []string{Segunda, Quarta, Sexta}

	assert.True(t, IsWorkingDay(workDays, day(5)))  // segunda
	assert.False(t, IsWorkingDay(workDays, day(6))) // terca
	assert.True(t, IsWorkingDay(workDays, day(7)))  // quarta
	assert.False(t, IsWorkingDay(workDays, day(8))) // quinta
	assert.True(t, IsWorkingDay(workDays, day(9)))  // sexta
	assert.False(t, IsWorkingDay(workDays, day(10))) // sabado
	assert.False(t, IsWorkingDay(workDays, day(11))) // domingo
}

func TestIsWorkingDayDefault(t *testing.T) {
	// Conjunto vazio assume segunda a sexta.
	for d := 5; d <= 9; d++ {
		assert.True(t, IsWorkingDay(nil, day(d)), "dia %d", d)
	}
	assert.False(t, IsWorkingDay(nil, day(10)))
	assert.False(t, IsWorkingDay(nil, day(11)))
	assert.False(t, IsWorkingDay([]string{}, day(10)))
}

func TestParseWorkDay(t *testing.T) {
	d, err := ParseWorkDay("  Segunda ")
	require.NoError(t, err)
	assert.Equal(t, Segunda, d)

	_, err = ParseWorkDay("monday")
	assert.Error(t, err)

	_, err = ParseWorkDay("")
	assert.Error(t, err)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, Segunda, DayName(day(5)))
	assert.Equal(t, Domingo, DayName(day(11)))
}
