package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
	"github.com/rotaflow/field-scheduler/internal/models"
	"github.com/rotaflow/field-scheduler/internal/timezone"
)

// AccessScheduleMiddleware barra usuários com janela de acesso fora do
// horário permitido. Usuário sem janela vinculada passa sempre; as
// janelas são avaliadas no fuso da empresa.
func AccessScheduleMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.MustGet(ContextUserID).(uint)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_in_context"})
			return
		}

		var user models.User
		if err := db.Preload("Company").First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if user.AccessScheduleID == nil {
			c.Next()
			return
		}

		var as models.AccessSchedule
		if err := db.First(&as, *user.AccessScheduleID).Error; err != nil {
			// Janela apagada equivale a sem restrição.
			c.Next()
			return
		}

		now := timezone.NowIn(user.Company.Timezone)
		sched := schedule.AccessSchedule{Name: as.Name, Windows: as.Windows}
		if !enforceAccessWindow(c, &sched, now) {
			return
		}

		c.Next()
	}
}

// enforceAccessWindow aborta com 403 fora da janela. Dentro dela,
// expõe em X-Access-Expires-In quantos minutos restam até o fim do
// turno, para o front avisar o usuário antes do corte.
func enforceAccessWindow(c *gin.Context, sched *schedule.AccessSchedule, now time.Time) bool {
	if !schedule.IsAccessAllowed(sched, now) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "outside_access_window"})
		return false
	}
	if left := schedule.MinutesUntilEndOfShift(sched, now); left != nil {
		c.Header("X-Access-Expires-In", strconv.Itoa(*left))
	}
	return true
}
