package handlers

import (
	"net/http"

	"nekocare/internal/auth"
	dom "nekocare/internal/domain"
	"nekocare/internal/dto"
	"nekocare/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CareHandler serves the feed, care logs, observations and definitions.
type CareHandler struct {
	svc *service.CareService
	log *zap.Logger
}

func NewCareHandler(svc *service.CareService, log *zap.Logger) *CareHandler {
	return &CareHandler{svc: svc, log: log}
}

// Today godoc
// @Summary      Today's care feed
// @Tags         care
// @Produce      json
// @Security     CookieAuth
// @Param        cat_id  query     int  false  "Active cat"
// @Success      200     {object}  dto.FeedResponse
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /care/today [get]
func (h *CareHandler) Today(c *gin.Context) {
	catID, ok := queryID(c, "cat_id")
	if !ok {
		return
	}
	feed, err := h.svc.Feed(c.Request.Context(), auth.HouseholdIDFromContext(c), catID, nil)
	if err != nil {
		writeError(c, h.log, "feed", err)
		return
	}
	c.JSON(http.StatusOK, feedToResponse(feed))
}

// Feed godoc
// @Summary      Care feed with optimistic overlay
// @Description  Computes the feed with the client's in-flight values applied. Entries already reflected by the backend are dropped from the returned overlay.
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.FeedRequest  true  "Active cat and overlay"
// @Success      200   {object}  dto.FeedResponse
// @Failure      400   {object}  map[string]string
// @Router       /care/feed [post]
func (h *CareHandler) Feed(c *gin.Context) {
	var req dto.FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	overlay, ok := entriesToOverlay(req.Overlay)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid overlay phase"})
		return
	}
	feed, err := h.svc.Feed(c.Request.Context(), auth.HouseholdIDFromContext(c), req.CatID, overlay)
	if err != nil {
		writeError(c, h.log, "feed", err)
		return
	}
	c.JSON(http.StatusOK, feedToResponse(feed))
}

// AddLog godoc
// @Summary      Complete a task occurrence
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.AddCareLogRequest  true  "Log type and cat"
// @Success      201   {object}  dto.CareLogResponse
// @Failure      400   {object}  map[string]string
// @Router       /care/logs [post]
func (h *CareHandler) AddLog(c *gin.Context) {
	var req dto.AddCareLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	l, err := h.svc.AddCareLog(c.Request.Context(), auth.HouseholdIDFromContext(c), auth.UserIDFromContext(c), req.Type, req.CatID)
	if err != nil {
		writeError(c, h.log, "add care log", err)
		return
	}
	c.JSON(http.StatusCreated, careLogToResponse(l))
}

// UndoLog godoc
// @Summary      Undo a completion
// @Tags         care
// @Security     CookieAuth
// @Param        id   path  int  true  "Log ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /care/logs/{id} [delete]
func (h *CareHandler) UndoLog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.UndoCareLog(c.Request.Context(), auth.HouseholdIDFromContext(c), id); err != nil {
		writeError(c, h.log, "undo care log", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTaskDefs godoc
// @Summary      List task definitions
// @Tags         care
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  dto.TaskDefResponse
// @Router       /care/task-defs [get]
func (h *CareHandler) ListTaskDefs(c *gin.Context) {
	defs, err := h.svc.ListTaskDefs(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list task defs", err)
		return
	}
	out := make([]dto.TaskDefResponse, len(defs))
	for i, d := range defs {
		out[i] = taskDefToResponse(d)
	}
	c.JSON(http.StatusOK, out)
}

// CreateTaskDef godoc
// @Summary      Create a task definition
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.TaskDefRequest  true  "Definition"
// @Success      201   {object}  dto.TaskDefResponse
// @Failure      400   {object}  map[string]string
// @Router       /care/task-defs [post]
func (h *CareHandler) CreateTaskDef(c *gin.Context) {
	var req dto.TaskDefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	hid := auth.HouseholdIDFromContext(c)
	d, err := h.svc.CreateTaskDef(c.Request.Context(), taskDefFromRequest(hid, req))
	if err != nil {
		writeError(c, h.log, "create task def", err)
		return
	}
	c.JSON(http.StatusCreated, taskDefToResponse(d))
}

// UpdateTaskDef godoc
// @Summary      Replace a task definition
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                 true  "Definition ID"
// @Param        body  body      dto.TaskDefRequest  true  "Definition"
// @Success      200   {object}  dto.TaskDefResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /care/task-defs/{id} [patch]
func (h *CareHandler) UpdateTaskDef(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TaskDefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	hid := auth.HouseholdIDFromContext(c)
	d, err := h.svc.UpdateTaskDef(c.Request.Context(), hid, id, taskDefFromRequest(hid, req))
	if err != nil {
		writeError(c, h.log, "update task def", err)
		return
	}
	c.JSON(http.StatusOK, taskDefToResponse(d))
}

// DeleteTaskDef godoc
// @Summary      Disable a task definition
// @Tags         care
// @Security     CookieAuth
// @Param        id   path  int  true  "Definition ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /care/task-defs/{id} [delete]
func (h *CareHandler) DeleteTaskDef(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTaskDef(c.Request.Context(), auth.HouseholdIDFromContext(c), id); err != nil {
		writeError(c, h.log, "delete task def", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNoticeDefs godoc
// @Summary      List notice definitions
// @Tags         care
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  dto.NoticeDefResponse
// @Router       /care/notice-defs [get]
func (h *CareHandler) ListNoticeDefs(c *gin.Context) {
	defs, err := h.svc.ListNoticeDefs(c.Request.Context(), auth.HouseholdIDFromContext(c))
	if err != nil {
		writeError(c, h.log, "list notice defs", err)
		return
	}
	out := make([]dto.NoticeDefResponse, len(defs))
	for i, d := range defs {
		out[i] = noticeDefToResponse(d)
	}
	c.JSON(http.StatusOK, out)
}

// CreateNoticeDef godoc
// @Summary      Create a notice definition
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.NoticeDefRequest  true  "Definition"
// @Success      201   {object}  dto.NoticeDefResponse
// @Failure      400   {object}  map[string]string
// @Router       /care/notice-defs [post]
func (h *CareHandler) CreateNoticeDef(c *gin.Context) {
	var req dto.NoticeDefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := h.svc.CreateNoticeDef(c.Request.Context(), dom.NoticeDef{
		HouseholdID:  auth.HouseholdIDFromContext(c),
		Title:        req.Title,
		Category:     dom.NoticeCategory(req.Category),
		InputType:    dom.InputType(req.InputType),
		Choices:      req.Choices,
		NormalValues: req.NormalValues,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		writeError(c, h.log, "create notice def", err)
		return
	}
	c.JSON(http.StatusCreated, noticeDefToResponse(d))
}

// DeleteNoticeDef godoc
// @Summary      Disable a notice definition
// @Tags         care
// @Security     CookieAuth
// @Param        id   path  int  true  "Definition ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /care/notice-defs/{id} [delete]
func (h *CareHandler) DeleteNoticeDef(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteNoticeDef(c.Request.Context(), auth.HouseholdIDFromContext(c), id); err != nil {
		writeError(c, h.log, "delete notice def", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddObservation godoc
// @Summary      Record a notice value for a cat
// @Tags         care
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.ObservationRequest  true  "Observation"
// @Success      201   {object}  dto.ObservationResponse
// @Failure      400   {object}  map[string]string
// @Router       /care/observations [post]
func (h *CareHandler) AddObservation(c *gin.Context) {
	var req dto.ObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.svc.AddObservation(c.Request.Context(), auth.HouseholdIDFromContext(c), auth.UserIDFromContext(c), req.CatID, req.NoticeID, req.Value)
	if err != nil {
		writeError(c, h.log, "add observation", err)
		return
	}
	c.JSON(http.StatusCreated, observationToResponse(o))
}

// AcknowledgeObservation godoc
// @Summary      Acknowledge an abnormal observation
// @Tags         care
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Observation ID"
// @Success      200  {object}  dto.ObservationResponse
// @Failure      404  {object}  map[string]string
// @Router       /care/observations/{id}/ack [post]
func (h *CareHandler) AcknowledgeObservation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	o, err := h.svc.AcknowledgeObservation(c.Request.Context(), auth.HouseholdIDFromContext(c), id)
	if err != nil {
		writeError(c, h.log, "acknowledge observation", err)
		return
	}
	c.JSON(http.StatusOK, observationToResponse(o))
}
