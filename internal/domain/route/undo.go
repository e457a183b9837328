package route

import (
	"context"
	"time"

	"github.com/rotaflow/field-scheduler/internal/models"
)

// UndoSnapshot é a última parada removida de uma rota, guardada para
// restauração. Cada rota tem um único slot com validade limitada.
type UndoSnapshot struct {
	Stop         models.RouteStop `json:"stop"`
	RemovedAt    time.Time        `json:"removed_at"`
	RouteVersion uint             `json:"route_version"`
}

type UndoStore interface {
	Save(ctx context.Context, routeID string, snap UndoSnapshot) error

	// Take consome o snapshot; ok=false quando o slot está vazio ou
	// expirou.
	Take(ctx context.Context, routeID string) (snap UndoSnapshot, ok bool, err error)

	Clear(ctx context.Context, routeID string)
}
