package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Dias de trabalho são armazenados com os nomes em português, na forma em
// que chegam do cadastro de técnicos e equipes.
const (
	Domingo = "domingo"
	Segunda = "segunda"
	Terca   = "terca"
	Quarta  = "quarta"
	Quinta  = "quinta"
	Sexta   = "sexta"
	Sabado  = "sabado"
)

// índice casa com time.Weekday (0 = domingo).
var dayNames = [7]string{Domingo, Segunda, Terca, Quarta, Quinta, Sexta, Sabado}

// DefaultWorkDays é assumido quando o cadastro não define dias de trabalho.
func DefaultWorkDays() []string {
	return []string{Segunda, Terca, Quarta, Quinta, Sexta}
}

// DayName retorna o nome do dia da semana de uma data.
func DayName(date time.Time) string {
	return dayNames[int(date.Weekday())]
}

// ParseWorkDay valida um nome de dia vindo do cadastro. Valores inválidos
// são rejeitados na escrita da configuração, nunca durante a busca.
func ParseWorkDay(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, d := range dayNames {
		if d == n {
			return d, nil
		}
	}
	return "", fmt.Errorf("dia de trabalho inválido: %q", name)
}

// IsWorkingDay decide se a data cai num dia de trabalho do responsável.
// Conjunto vazio assume segunda a sexta.
func IsWorkingDay(workDays []string, date time.Time) bool {
	if len(workDays) == 0 {
		workDays = DefaultWorkDays()
	}

	day := DayName(date)
	for _, d := range workDays {
		if d == day {
			return true
		}
	}
	return false
}
