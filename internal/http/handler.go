package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crime-dashboard/internal/http/middleware"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/service"
)

const uploadField = "file"

type Handler struct {
	importService     *service.ImportService
	aggregateService  *service.AggregateService
	targetService     *service.TargetService
	historyService    *service.HistoryService
	timeseriesService *service.TimeseriesService
	log               zerolog.Logger
	now               func() time.Time
}

func NewHandler(
	importService *service.ImportService,
	aggregateService *service.AggregateService,
	targetService *service.TargetService,
	historyService *service.HistoryService,
	timeseriesService *service.TimeseriesService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		importService:     importService,
		aggregateService:  aggregateService,
		targetService:     targetService,
		historyService:    historyService,
		timeseriesService: timeseriesService,
		log:               log,
		now:               time.Now,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware, adminMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/dashboard", h.getCommandDashboard)
		protected.GET("/units/:unit/dashboard", h.getUnitDashboard)
		protected.GET("/units/:unit/heatmap", h.getHeatMap)
		protected.GET("/timeseries", h.getTimeseries)
		// RO numbers contain slashes
		protected.GET("/records/*ro", h.getRecord)
		protected.GET("/history", h.listHistory)
		protected.GET("/targets", h.listTargets)
		protected.PUT("/targets/:id", h.updateTarget)
	}

	admin := r.Group("/")
	admin.Use(adminMiddleware)
	{
		admin.POST("/imports/incidents", h.importIncidents)
		admin.POST("/imports/history", h.importHistory)

		admin.POST("/targets/import", h.importTargets)
		admin.DELETE("/targets", h.clearTargets)
		admin.POST("/targets/seed", h.seedTargets)
		admin.POST("/targets/units/:unit/clear", h.clearUnitTargets)
		admin.POST("/targets/units/:unit/undo", h.undoUnitTargets)
		admin.GET("/targets/units/:unit/undo", h.getUndoState)

		admin.POST("/history", h.addHistory)
		admin.PUT("/history/:id", h.updateHistory)
		admin.DELETE("/history/:id", h.deleteHistory)
	}
}

func (h *Handler) getCommandDashboard(c *gin.Context) {
	year, semester, err := h.period(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dashboard, err := h.aggregateService.CommandDashboard(c.Request.Context(), year, semester)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(dashboard))
}

func (h *Handler) getUnitDashboard(c *gin.Context) {
	year, semester, err := h.period(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	dashboard, err := h.aggregateService.UnitDashboard(c.Request.Context(), c.Param("unit"), year, semester)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(dashboard))
}

func (h *Handler) getHeatMap(c *gin.Context) {
	buckets, err := h.aggregateService.HeatMap(c.Request.Context(), c.Param("unit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(buckets))
}

func (h *Handler) getTimeseries(c *gin.Context) {
	series, err := h.timeseriesService.Series(c.Request.Context(), c.Query("unit"), c.Query("range"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(series))
}

func (h *Handler) getRecord(c *gin.Context) {
	ro := strings.TrimPrefix(c.Param("ro"), "/")

	detail, err := h.historyService.RecordDetail(c.Request.Context(), ro)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(detail))
}

func (h *Handler) listHistory(c *gin.Context) {
	entries, err := h.historyService.ListByRO(c.Request.Context(), c.Query("ro"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) addHistory(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	var req service.AddHistoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	entry, err := h.historyService.Add(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "history.add").Str("ro", entry.RO).Str("entry_id", entry.ID.String()).Msg("history entry added")

	c.JSON(http.StatusCreated, successResponse(entry))
}

func (h *Handler) updateHistory(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	entry, err := h.historyService.Update(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "history.update").Str("entry_id", entry.ID.String()).Msg("history entry updated")

	c.JSON(http.StatusOK, successResponse(entry))
}

func (h *Handler) deleteHistory(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "history.delete").Str("entry_id", c.Param("id")).Msg("history entry deleted")

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "history entry deleted"}))
}

func (h *Handler) listTargets(c *gin.Context) {
	year, semester, err := h.period(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	targets, err := h.targetService.List(c.Request.Context(), year, semester)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(targets))
}

func (h *Handler) updateTarget(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		TargetValue *int `json:"target_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	target, err := h.targetService.Update(c.Request.Context(), c.Param("id"), *req.TargetValue)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.update").
		Str("target_id", target.ID.String()).
		Str("unit", target.Unit).
		Int("target_value", target.TargetValue).
		Msg("target updated")

	c.JSON(http.StatusOK, successResponse(target))
}

func (h *Handler) importTargets(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	var req struct {
		Targets []service.TargetInput `json:"targets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	targets, err := h.targetService.Upsert(c.Request.Context(), req.Targets)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.import").Int("targets", len(targets)).Msg("targets imported")

	c.JSON(http.StatusOK, successResponse(gin.H{"imported": len(targets)}))
}

func (h *Handler) seedTargets(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	year, semester, err := h.period(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	created, err := h.targetService.Seed(c.Request.Context(), year, semester)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.seed").Int("year", year).Int("semester", semester).Int64("created", created).Msg("targets seeded")

	c.JSON(http.StatusOK, successResponse(gin.H{"created": created, "year": year, "semester": semester}))
}

func (h *Handler) clearUnitTargets(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	year, semester, err := h.period(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	snapshot, err := h.targetService.ClearUnit(c.Request.Context(), c.Param("unit"), year, semester)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.clear_unit").
		Str("unit", snapshot.Unit).
		Int("year", year).
		Int("semester", semester).
		Int("targets", len(snapshot.Targets)).
		Msg("unit targets cleared")

	c.JSON(http.StatusOK, successResponse(gin.H{
		"unit":     snapshot.Unit,
		"cleared":  len(snapshot.Targets),
		"can_undo": true,
	}))
}

func (h *Handler) undoUnitTargets(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	snapshot, err := h.targetService.Undo(c.Request.Context(), c.Param("unit"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.undo").Str("unit", snapshot.Unit).Int("targets", len(snapshot.Targets)).Msg("unit targets restored")

	c.JSON(http.StatusOK, successResponse(gin.H{
		"unit":     snapshot.Unit,
		"restored": len(snapshot.Targets),
		"taken_at": snapshot.TakenAt,
	}))
}

func (h *Handler) clearTargets(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	deleted, err := h.targetService.ClearAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "targets.clear_all").Int64("deleted", deleted).Msg("all targets deleted")

	c.JSON(http.StatusOK, successResponse(gin.H{"deleted": deleted}))
}

func (h *Handler) getUndoState(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(gin.H{"can_undo": h.targetService.CanUndo(c.Param("unit"))}))
}

func (h *Handler) importIncidents(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	file, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("spreadsheet file is required"))
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	defer src.Close()

	h.audit(principal, "imports.incidents").Str("file", file.Filename).Int64("size", file.Size).Msg("incident upload received")

	result, err := h.importService.ImportIncidents(c.Request.Context(), src)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "imports.incidents").
		Int("inserted", result.Inserted).
		Int("dropped", result.Dropped).
		Int64("stored", result.Stored).
		Msg("incident dataset replaced")

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) importHistory(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	file, err := c.FormFile(uploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("spreadsheet file is required"))
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	defer src.Close()

	result, err := h.historyService.ImportHistory(c.Request.Context(), src)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.audit(principal, "imports.history").
		Str("file", file.Filename).
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("history imported")

	c.JSON(http.StatusOK, successResponse(result))
}

// period reads year and semester from the query, defaulting to the current
// semester.
func (h *Handler) period(c *gin.Context) (int, int, error) {
	year, semester := service.CurrentPeriod(h.now())

	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: year", service.ErrInvalidInput)
		}
		year = v
	}
	if raw := strings.TrimSpace(c.Query("semester")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: semester", service.ErrInvalidInput)
		}
		semester = v
	}

	return year, semester, nil
}

// caller returns the principal set by the auth middleware. Write handlers
// log it so dataset replacements and target edits can be traced.
func caller(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
	}
	return principal, ok
}

func (h *Handler) audit(principal model.Principal, action string) *zerolog.Event {
	return h.log.Info().
		Str("user_id", principal.UserID).
		Str("role", string(principal.Role)).
		Str("action", action)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
