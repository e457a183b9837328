package availability

// Como a distância do slot foi medida; decidido por candidato: com
// paradas no dia mede o encaixe no trajeto, sem paradas mede da base.
const (
	DistanceFromBase      = "from_base"
	DistanceBetweenPoints = "between_points"
)

const (
	ResponsibleTechnician = "technician"
	ResponsibleTeam       = "team"
)

type SearchInput struct {
	CompanyID uint
	ClientID  uint
	ServiceID uint

	// Data inicial da varredura (YYYY-MM-DD); vazio começa amanhã.
	StartDate string

	// Restringe a busca a um responsável específico; nil varre todos.
	TechnicianID *uint
	TeamID       *uint
}

// Slot é um par (dia, responsável) com capacidade para o serviço.
type Slot struct {
	Date string `json:"date"`

	ResponsibleType string `json:"responsible_type"`
	ResponsibleID   uint   `json:"responsible_id"`
	ResponsibleName string `json:"responsible_name"`

	DistanceKm   float64 `json:"distance_km"`
	DurationMin  int     `json:"duration_min"`
	DistanceType string  `json:"distance_type"`

	// Capacidade do turno em minutos: o total do turno menos almoço,
	// o já agendado no dia e o saldo antes de encaixar este serviço.
	TotalMinutes     int `json:"total_minutes"`
	UsedMinutes      int `json:"used_minutes"`
	AvailableMinutes int `json:"available_minutes"`
}
