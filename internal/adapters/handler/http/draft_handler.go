package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
)

// DraftHandler drives the challenge creation wizard.
type DraftHandler struct {
	svc *services.DraftService
}

func NewDraftHandler(svc *services.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

type draftResponse struct {
	*domain.ChallengeDraft
	CurrentStep domain.WizardStep   `json:"current_step"`
	Steps       []domain.WizardStep `json:"steps"`
	IsTerminal  bool                `json:"is_terminal"`
}

type submittedResponse struct {
	ChallengeID string `json:"challenge_id"`
}

func newDraftResponse(d *domain.ChallengeDraft) draftResponse {
	return draftResponse{
		ChallengeDraft: d,
		CurrentStep:    d.CurrentStep(),
		Steps:          domain.ChallengeWizardSteps,
		IsTerminal:     d.IsTerminal(),
	}
}

func (h *DraftHandler) RegisterRoutes(router *gin.RouterGroup) {
	drafts := router.Group("/challenge-drafts")
	{
		drafts.POST("", h.Start)
		drafts.GET("/:id", h.Get)
		drafts.PUT("/:id", h.Update)
		drafts.DELETE("/:id", h.Discard)
		drafts.POST("/:id/next", h.Next)
		drafts.POST("/:id/previous", h.Previous)
		drafts.POST("/:id/tasks", h.AppendTask)
		drafts.DELETE("/:id/tasks/:index", h.RemoveTask)
		drafts.POST("/:id/metrics", h.AppendMetric)
		drafts.DELETE("/:id/metrics/:index", h.RemoveMetric)
	}
}

// Start godoc
// @Summary  Open a new creation wizard
// @Tags     drafts
// @Security BearerAuth
// @Success  201 {object} draftResponse
// @Router   /challenge-drafts [post]
func (h *DraftHandler) Start(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	draft, err := h.svc.Start(c.Request.Context(), session)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDraftResponse(draft))
}

func (h *DraftHandler) Get(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	draft, err := h.svc.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		handleLoadError(c, err, "draft")
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}

// Update godoc
// @Summary  Replace the wizard values without validating
// @Tags     drafts
// @Security BearerAuth
// @Param    id   path string             true "Draft id"
// @Param    body body domain.ChallengeForm true "Values"
// @Success  200 {object} draftResponse
// @Router   /challenge-drafts/{id} [put]
func (h *DraftHandler) Update(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var form domain.ChallengeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	draft, err := h.svc.Update(c.Request.Context(), session, c.Param("id"), form)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}

func (h *DraftHandler) Discard(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.svc.Discard(c.Request.Context(), session, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Next godoc
// @Summary  Validate the current step and advance, submitting at the review step
// @Tags     drafts
// @Security BearerAuth
// @Param    id path string true "Draft id"
// @Success  200 {object} draftResponse
// @Success  201 {object} submittedResponse
// @Failure  422 {object} map[string]any
// @Router   /challenge-drafts/{id}/next [post]
func (h *DraftHandler) Next(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	result, err := h.svc.Next(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	if result.ChallengeID != "" {
		c.Header("Location", "/api/v1/challenges/"+result.ChallengeID)
		c.JSON(http.StatusCreated, submittedResponse{ChallengeID: result.ChallengeID})
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(result.Draft))
}

func (h *DraftHandler) Previous(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	draft, err := h.svc.Previous(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}

// AppendTask adds a task row; an empty body gets the next free day number.
func (h *DraftHandler) AppendTask(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var task *domain.TaskInput
	if c.Request.ContentLength > 0 {
		task = &domain.TaskInput{}
		if err := c.ShouldBindJSON(task); err != nil {
			badRequest(c, err)
			return
		}
	}

	draft, err := h.svc.AppendTask(c.Request.Context(), session, c.Param("id"), task)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}

func (h *DraftHandler) RemoveTask(c *gin.Context) {
	h.removeRow(c, h.svc.RemoveTask)
}

func (h *DraftHandler) AppendMetric(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var metric *domain.MetricInput
	if c.Request.ContentLength > 0 {
		metric = &domain.MetricInput{}
		if err := c.ShouldBindJSON(metric); err != nil {
			badRequest(c, err)
			return
		}
	}

	draft, err := h.svc.AppendMetric(c.Request.Context(), session, c.Param("id"), metric)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}

func (h *DraftHandler) RemoveMetric(c *gin.Context) {
	h.removeRow(c, h.svc.RemoveMetric)
}

type removeRowFunc func(ctx context.Context, session domain.Session, id string, index int) (*domain.ChallengeDraft, error)

func (h *DraftHandler) removeRow(c *gin.Context, remove removeRowFunc) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, errors.New("index must be an integer"))
		return
	}

	draft, err := remove(c.Request.Context(), session, c.Param("id"), index)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(draft))
}
