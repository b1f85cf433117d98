package http

import (
	"net/http"
	"strings"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	challenges    *services.ChallengeService
	participation *services.ParticipationService
}

func NewChallengeHandler(challenges *services.ChallengeService, participation *services.ParticipationService) *ChallengeHandler {
	return &ChallengeHandler{
		challenges:    challenges,
		participation: participation,
	}
}

// metricValuesRequest carries readings keyed by metric id.
type metricValuesRequest struct {
	Values map[string]any `json:"values"`
}

func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	challenges := router.Group("/challenges")
	{
		challenges.GET("", h.List)
		challenges.GET("/:id", optionalAuth, h.Get)
		challenges.POST("", requireAuth, h.Create)
		challenges.PUT("/:id", requireAuth, h.Update)
		challenges.POST("/:id/publish", requireAuth, h.Publish)
		challenges.POST("/:id/archive", requireAuth, h.Archive)
		challenges.GET("/:id/join-form", requireAuth, h.JoinForm)
		challenges.POST("/:id/join", requireAuth, h.Join)
	}
}

// List godoc
// @Summary  Published challenges split into featured and trending
// @Tags     challenges
// @Produce  json
// @Param    search query string false "Name or description contains"
// @Param    type   query string false "Challenge type"
// @Success  200 {object} domain.PublicChallenges
// @Router   /challenges [get]
func (h *ChallengeHandler) List(c *gin.Context) {
	filter := domain.PublicChallengeFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Type:   strings.TrimSpace(c.Query("type")),
	}

	list, err := h.challenges.ListPublic(c.Request.Context(), filter)
	if err != nil {
		handleLoadError(c, err, "challenges")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary  Challenge detail with host and daily tasks
// @Tags     challenges
// @Produce  json
// @Param    id path string true "Challenge id"
// @Success  200 {object} domain.ChallengeDetail
// @Failure  404 {object} map[string]string
// @Router   /challenges/{id} [get]
func (h *ChallengeHandler) Get(c *gin.Context) {
	var viewerID string
	if session, ok := middleware.GetSession(c); ok {
		viewerID = session.UserID
	}

	detail, err := h.challenges.GetDetail(c.Request.Context(), viewerID, c.Param("id"))
	if err != nil {
		handleLoadError(c, err, "challenge")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create godoc
// @Summary  Create a challenge with its tasks and metrics in one step
// @Tags     challenges
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body domain.ChallengeForm true "Challenge"
// @Success  201 {object} domain.FullChallenge
// @Failure  403,422 {object} map[string]any
// @Router   /challenges [post]
func (h *ChallengeHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	form := domain.NewChallengeForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	full, err := h.challenges.Create(c.Request.Context(), session, form)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, full)
}

// Update godoc
// @Summary  Edit a challenge's basic info
// @Tags     challenges
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string           true "Challenge id"
// @Param    body body domain.BasicInfo true "Basic info"
// @Success  200 {object} domain.Challenge
// @Router   /challenges/{id} [put]
func (h *ChallengeHandler) Update(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var info domain.BasicInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		badRequest(c, err)
		return
	}

	challenge, err := h.challenges.Update(c.Request.Context(), session, c.Param("id"), info)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// Publish godoc
// @Summary  Make a pending challenge public
// @Tags     challenges
// @Security BearerAuth
// @Param    id path string true "Challenge id"
// @Success  200 {object} domain.Challenge
// @Failure  409 {object} map[string]string
// @Failure  422 {object} map[string]interface{} "some day has no task"
// @Router   /challenges/{id}/publish [post]
func (h *ChallengeHandler) Publish(c *gin.Context) {
	h.changeStatus(c, domain.ChallengePublished)
}

func (h *ChallengeHandler) Archive(c *gin.Context) {
	h.changeStatus(c, domain.ChallengeArchived)
}

func (h *ChallengeHandler) changeStatus(c *gin.Context, status domain.ChallengeStatus) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	challenge, err := h.challenges.ChangeStatus(c.Request.Context(), session, c.Param("id"), status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// JoinForm godoc
// @Summary  Initial measurements asked when joining
// @Tags     participation
// @Security BearerAuth
// @Param    id path string true "Challenge id"
// @Success  200 {object} domain.JoinForm
// @Router   /challenges/{id}/join-form [get]
func (h *ChallengeHandler) JoinForm(c *gin.Context) {
	form, err := h.challenges.JoinForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleLoadError(c, err, "join form")
		return
	}
	c.JSON(http.StatusOK, form)
}

// Join godoc
// @Summary  Join a published challenge with initial readings
// @Tags     participation
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string              true "Challenge id"
// @Param    body body metricValuesRequest false "Initial readings keyed by metric id"
// @Success  201 {object} domain.UserChallenge
// @Success  303 {object} map[string]string "Already joined"
// @Failure  409,422 {object} map[string]any
// @Router   /challenges/{id}/join [post]
func (h *ChallengeHandler) Join(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req metricValuesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	uc, err := h.participation.Join(c.Request.Context(), session, c.Param("id"), req.Values)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Location", myChallengesPath+uc.ID)
	c.JSON(http.StatusCreated, uc)
}
