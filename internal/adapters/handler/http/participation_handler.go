package http

import (
	"net/http"

	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
)

type ParticipationHandler struct {
	svc *services.ParticipationService
}

func NewParticipationHandler(svc *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{svc: svc}
}

func (h *ParticipationHandler) RegisterRoutes(router *gin.RouterGroup) {
	mine := router.Group("/my-challenges")
	{
		mine.GET("", h.List)
		mine.GET("/:ucID", h.Dashboard)
		mine.POST("/:ucID/complete", h.CompleteTask)
		mine.POST("/:ucID/metrics/daily", h.RecordDaily)
		mine.POST("/:ucID/metrics/final", h.RecordFinal)
		mine.GET("/:ucID/progress", h.Progress)
		mine.GET("/:ucID/report", h.Report)
	}
}

// List godoc
// @Summary  Challenges the caller has joined
// @Tags     participation
// @Security BearerAuth
// @Produce  json
// @Success  200 {array} domain.MyChallengeCard
// @Router   /my-challenges [get]
func (h *ParticipationHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	cards, err := h.svc.ListMine(c.Request.Context(), session)
	if err != nil {
		handleLoadError(c, err, "your challenges")
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Dashboard godoc
// @Summary  Current day, current task and the daily metric form
// @Tags     participation
// @Security BearerAuth
// @Param    ucID path string true "User challenge id"
// @Success  200 {object} domain.Dashboard
// @Failure  404 {object} map[string]string
// @Router   /my-challenges/{ucID} [get]
func (h *ParticipationHandler) Dashboard(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	dashboard, err := h.svc.Dashboard(c.Request.Context(), session, c.Param("ucID"))
	if err != nil {
		handleLoadError(c, err, "dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// CompleteTask godoc
// @Summary  Mark the current day's task done
// @Tags     participation
// @Security BearerAuth
// @Param    ucID path string true "User challenge id"
// @Success  200 {object} domain.UserChallenge
// @Failure  409 {object} map[string]string
// @Router   /my-challenges/{ucID}/complete [post]
func (h *ParticipationHandler) CompleteTask(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	uc, err := h.svc.CompleteTask(c.Request.Context(), session, c.Param("ucID"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, uc)
}

// RecordDaily godoc
// @Summary  Log today's metric values
// @Tags     participation
// @Security BearerAuth
// @Accept   json
// @Param    ucID path string              true "User challenge id"
// @Param    body body metricValuesRequest true "Values keyed by metric id"
// @Success  201 {array} domain.UserMetricData
// @Failure  422 {object} map[string]any
// @Router   /my-challenges/{ucID}/metrics/daily [post]
func (h *ParticipationHandler) RecordDaily(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req metricValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rows, err := h.svc.RecordDaily(c.Request.Context(), session, c.Param("ucID"), req.Values)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rows)
}

// RecordFinal godoc
// @Summary  Record final values after completing the challenge
// @Tags     participation
// @Security BearerAuth
// @Accept   json
// @Param    ucID path string              true "User challenge id"
// @Param    body body metricValuesRequest true "Values keyed by metric id"
// @Success  200 {object} domain.Report
// @Failure  409,422 {object} map[string]any
// @Router   /my-challenges/{ucID}/metrics/final [post]
func (h *ParticipationHandler) RecordFinal(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req metricValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.svc.RecordFinal(c.Request.Context(), session, c.Param("ucID"), req.Values)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ParticipationHandler) Progress(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	series, err := h.svc.Trends(c.Request.Context(), session, c.Param("ucID"))
	if err != nil {
		handleLoadError(c, err, "progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

// Report godoc
// @Summary  Before and after comparison of final-tagged metrics
// @Tags     participation
// @Security BearerAuth
// @Param    ucID path string true "User challenge id"
// @Success  200 {object} domain.Report
// @Router   /my-challenges/{ucID}/report [get]
func (h *ParticipationHandler) Report(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	report, err := h.svc.Report(c.Request.Context(), session, c.Param("ucID"))
	if err != nil {
		handleLoadError(c, err, "report")
		return
	}
	c.JSON(http.StatusOK, report)
}
