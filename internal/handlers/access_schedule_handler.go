package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
	"github.com/rotaflow/field-scheduler/internal/models"
)

type AccessScheduleHandler struct {
	db *gorm.DB
}

func NewAccessScheduleHandler(db *gorm.DB) *AccessScheduleHandler {
	return &AccessScheduleHandler{db: db}
}

type AccessScheduleRequest struct {
	Name    string                           `json:"name" binding:"required"`
	Windows map[string][]schedule.TimeWindow `json:"windows" binding:"required"`
}

var validAccessDays = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

func validateWindows(windows map[string][]schedule.TimeWindow) string {
	for day, list := range windows {
		if !validAccessDays[strings.ToLower(day)] {
			return "invalid_day"
		}
		for _, w := range list {
			if len(w.Start) != 5 || len(w.End) != 5 || w.Start > w.End {
				return "invalid_window"
			}
		}
	}
	return ""
}

func (h *AccessScheduleHandler) List(c *gin.Context) {
	company := companyID(c)

	var schedules []models.AccessSchedule
	if err := h.db.
		Where("company_id = ?", company).
		Order("id ASC").
		Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_schedules"})
		return
	}

	c.JSON(http.StatusOK, schedules)
}

func (h *AccessScheduleHandler) Create(c *gin.Context) {
	company := companyID(c)

	var req AccessScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if code := validateWindows(req.Windows); code != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": code})
		return
	}

	sched := models.AccessSchedule{
		CompanyID: company,
		Name:      strings.TrimSpace(req.Name),
		Windows:   lowercaseDays(req.Windows),
	}
	if err := h.db.Create(&sched).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_schedule"})
		return
	}

	c.JSON(http.StatusCreated, sched)
}

func (h *AccessScheduleHandler) Update(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var sched models.AccessSchedule
	if err := h.db.
		Where("id = ? AND company_id = ?", id, company).
		First(&sched).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule_not_found"})
		return
	}

	var req AccessScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if code := validateWindows(req.Windows); code != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": code})
		return
	}

	sched.Name = strings.TrimSpace(req.Name)
	sched.Windows = lowercaseDays(req.Windows)
	if err := h.db.Save(&sched).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_schedule"})
		return
	}

	c.JSON(http.StatusOK, sched)
}

func (h *AccessScheduleHandler) Delete(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Usuários apontando para a tabela removida ficam sem restrição.
		if err := tx.Model(&models.User{}).
			Where("company_id = ? AND access_schedule_id = ?", company, id).
			Update("access_schedule_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND company_id = ?", id, company).
			Delete(&models.AccessSchedule{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AssignToUser vincula (ou desvincula, com schedule_id nulo) uma tabela
// de acesso a um usuário da mesma empresa.
func (h *AccessScheduleHandler) AssignToUser(c *gin.Context) {
	company := companyID(c)

	var body struct {
		UserID     uint  `json:"user_id" binding:"required"`
		ScheduleID *uint `json:"schedule_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if body.ScheduleID != nil {
		var count int64
		h.db.Model(&models.AccessSchedule{}).
			Where("id = ? AND company_id = ?", *body.ScheduleID, company).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule_not_found"})
			return
		}
	}

	res := h.db.Model(&models.User{}).
		Where("id = ? AND company_id = ?", body.UserID, company).
		Update("access_schedule_id", body.ScheduleID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_assign_schedule"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": body.UserID, "schedule_id": body.ScheduleID})
}

func lowercaseDays(in map[string][]schedule.TimeWindow) map[string][]schedule.TimeWindow {
	out := make(map[string][]schedule.TimeWindow, len(in))
	for day, list := range in {
		out[strings.ToLower(day)] = list
	}
	return out
}
