package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	routeuc "github.com/rotaflow/field-scheduler/internal/usecase/route"

	"github.com/rotaflow/field-scheduler/internal/dto"
	"github.com/rotaflow/field-scheduler/internal/httpresp"
	"github.com/rotaflow/field-scheduler/internal/models"
)

// RouteHandler expõe o ciclo de vida da rota. Leituras batem direto no
// banco; toda mutação passa pelos use cases, que cuidam de lock,
// versão otimista e auditoria.
type RouteHandler struct {
	db *gorm.DB

	create     *routeuc.CreateRoute
	addStops   *routeuc.AddStops
	removeStop *routeuc.RemoveStop
	undoRemove *routeuc.UndoRemove
	reorder    *routeuc.Reorder
	optimize   *routeuc.Optimize
	setStatus  *routeuc.SetStatus
	changeDate *routeuc.ChangeDate
}

func NewRouteHandler(
	db *gorm.DB,
	create *routeuc.CreateRoute,
	addStops *routeuc.AddStops,
	removeStop *routeuc.RemoveStop,
	undoRemove *routeuc.UndoRemove,
	reorder *routeuc.Reorder,
	optimize *routeuc.Optimize,
	setStatus *routeuc.SetStatus,
	changeDate *routeuc.ChangeDate,
) *RouteHandler {
	return &RouteHandler{
		db:         db,
		create:     create,
		addStops:   addStops,
		removeStop: removeStop,
		undoRemove: undoRemove,
		reorder:    reorder,
		optimize:   optimize,
		setStatus:  setStatus,
		changeDate: changeDate,
	}
}

// --------- Leitura ---------

func (h *RouteHandler) List(c *gin.Context) {
	company := companyID(c)

	query := h.db.Model(&models.Route{}).Where("company_id = ?", company)

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if rtype := c.Query("responsible_type"); rtype != "" {
		query = query.Where("responsible_type = ?", rtype)
	}
	if rid := c.Query("responsible_id"); rid != "" {
		query = query.Where("responsible_id = ?", rid)
	}

	var routes []models.Route
	if err := query.Order("date DESC, display_number DESC").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_routes"})
		return
	}

	out := make([]dto.RouteSummary, 0, len(routes))
	for _, r := range routes {
		out = append(out, dto.NewRouteSummary(r))
	}
	httpresp.List(c, out)
}

func (h *RouteHandler) Get(c *gin.Context) {
	company := companyID(c)
	id := c.Param("id")

	var r models.Route
	if err := h.db.
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("stop_order ASC")
		}).
		Where("id = ? AND company_id = ?", id, company).
		First(&r).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "route_not_found"})
		return
	}

	c.JSON(http.StatusOK, r)
}

// --------- Mutação ---------

func (h *RouteHandler) Create(c *gin.Context) {
	var body struct {
		Date            string `json:"date" binding:"required"`
		ResponsibleType string `json:"responsible_type" binding:"required"`
		ResponsibleID   uint   `json:"responsible_id" binding:"required"`
		Roundtrip       bool   `json:"roundtrip"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	r, err := h.create.Execute(c.Request.Context(), routeuc.CreateRouteInput{
		CompanyID:       companyID(c),
		UserID:          userID(c),
		Date:            body.Date,
		ResponsibleType: body.ResponsibleType,
		ResponsibleID:   body.ResponsibleID,
		Roundtrip:       body.Roundtrip,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// StartPoint resolve e devolve a partida de um responsável sem criar
// rota; o front usa isso para pré-visualizar o mapa.
func (h *RouteHandler) StartPoint(c *gin.Context) {
	var body struct {
		ResponsibleType string `json:"responsible_type" binding:"required"`
		ResponsibleID   uint   `json:"responsible_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.create.ResolveStart(
		c.Request.Context(),
		companyID(c),
		body.ResponsibleType,
		body.ResponsibleID,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, result)
}

func (h *RouteHandler) AddStops(c *gin.Context) {
	var body struct {
		AppointmentIDs []uint `json:"appointment_ids" binding:"required"`
		FromVersion    *uint  `json:"from_version"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	r, err := h.addStops.Execute(c.Request.Context(), routeuc.AddStopsInput{
		CompanyID:      companyID(c),
		UserID:         userID(c),
		RouteID:        c.Param("id"),
		AppointmentIDs: body.AppointmentIDs,
		FromVersion:    body.FromVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) RemoveStop(c *gin.Context) {
	r, err := h.removeStop.Execute(c.Request.Context(), routeuc.RemoveStopInput{
		CompanyID:   companyID(c),
		UserID:      userID(c),
		RouteID:     c.Param("id"),
		StopID:      c.Param("stopId"),
		FromVersion: fromVersionQuery(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) UndoRemove(c *gin.Context) {
	r, err := h.undoRemove.Execute(c.Request.Context(), routeuc.UndoRemoveInput{
		CompanyID: companyID(c),
		UserID:    userID(c),
		RouteID:   c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) Reorder(c *gin.Context) {
	var body struct {
		StopIDs     []string `json:"stop_ids" binding:"required"`
		FromVersion *uint    `json:"from_version"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	r, err := h.reorder.Execute(c.Request.Context(), routeuc.ReorderInput{
		CompanyID:   companyID(c),
		UserID:      userID(c),
		RouteID:     c.Param("id"),
		StopIDs:     body.StopIDs,
		FromVersion: body.FromVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) Optimize(c *gin.Context) {
	var body struct {
		EndAtStart  *bool `json:"end_at_start"`
		FromVersion *uint `json:"from_version"`
	}
	// Corpo é opcional nesse endpoint.
	_ = c.ShouldBindJSON(&body)

	r, err := h.optimize.Execute(c.Request.Context(), routeuc.OptimizeInput{
		CompanyID:   companyID(c),
		UserID:      userID(c),
		RouteID:     c.Param("id"),
		EndAtStart:  body.EndAtStart,
		FromVersion: body.FromVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) SetStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	r, err := h.setStatus.Execute(c.Request.Context(), routeuc.SetStatusInput{
		CompanyID: companyID(c),
		UserID:    userID(c),
		RouteID:   c.Param("id"),
		NewStatus: body.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}

func (h *RouteHandler) ChangeDate(c *gin.Context) {
	var body struct {
		Date        string `json:"date" binding:"required"`
		FromVersion *uint  `json:"from_version"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	r, err := h.changeDate.Execute(c.Request.Context(), routeuc.ChangeDateInput{
		CompanyID:   companyID(c),
		UserID:      userID(c),
		RouteID:     c.Param("id"),
		NewDate:     body.Date,
		FromVersion: body.FromVersion,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, r)
}
