package schedule

import (
	"fmt"
	"time"

	"github.com/rotaflow/field-scheduler/internal/timezone"
)

// TimeWindow é uma janela HH:MM inclusiva nas duas pontas.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AccessSchedule é a tabela semanal de janelas em que um usuário pode
// operar o sistema. As chaves são os dias em inglês, como gravadas no JSON
// da tabela de horários.
type AccessSchedule struct {
	Name    string                  `json:"name"`
	Windows map[string][]TimeWindow `json:"windows"`
}

var accessDayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday",
}

// IsAccessAllowed decide se "now" cai em alguma janela do dia corrente.
// Sem tabela configurada o acesso é sempre permitido; dia sem janelas é
// acesso negado. A avaliação acontece no fuso do negócio, não no do host.
func IsAccessAllowed(s *AccessSchedule, now time.Time) bool {
	if s == nil || len(s.Windows) == 0 {
		return true
	}

	local := now.In(timezone.Location(timezone.DefaultTimezone))
	day := accessDayNames[int(local.Weekday())]
	current := local.Format("15:04")

	windows := s.Windows[day]
	if len(windows) == 0 {
		return false
	}

	for _, w := range windows {
		// Strings HH:MM comparam corretamente em ordem lexicográfica.
		if current >= w.Start && current <= w.End {
			return true
		}
	}
	return false
}

// MinutesUntilEndOfShift retorna quantos minutos restam na janela que
// contém "now", ou nil se nenhuma janela casa.
func MinutesUntilEndOfShift(s *AccessSchedule, now time.Time) *int {
	if s == nil || len(s.Windows) == 0 {
		return nil
	}

	local := now.In(timezone.Location(timezone.DefaultTimezone))
	day := accessDayNames[int(local.Weekday())]
	current := local.Format("15:04")

	for _, w := range s.Windows[day] {
		if current >= w.Start && current <= w.End {
			endMin, err := minuteOfDay(w.End)
			if err != nil {
				continue
			}
			left := endMin - (local.Hour()*60 + local.Minute())
			return &left
		}
	}
	return nil
}

func minuteOfDay(hm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hm, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	return h*60 + m, nil
}
