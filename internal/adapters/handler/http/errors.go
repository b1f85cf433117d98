package http

import (
	"errors"
	"net/http"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
)

const myChallengesPath = "/api/v1/my-challenges/"

var (
	notFoundErrors = []error{
		domain.ErrChallengeNotFound,
		domain.ErrUserChallengeNotFound,
		domain.ErrDraftNotFound,
		domain.ErrNotificationNotFound,
		domain.ErrUserNotFound,
	}
	conflictErrors = []error{
		domain.ErrEmailAlreadyExists,
		domain.ErrChallengeNotOpen,
		domain.ErrChallengeNotActive,
		domain.ErrChallengeNotCompleted,
		domain.ErrNoTaskForDay,
		domain.ErrDayAlreadyCompleted,
		domain.ErrInvalidStatusChange,
	}
	badRequestErrors = []error{
		domain.ErrInvalidEmail,
		domain.ErrPasswordTooShort,
		domain.ErrInvalidRole,
		domain.ErrUserNameTooLong,
		domain.ErrRowIndexOutOfRange,
	}
)

// matchSentinel returns the first listed sentinel in err's chain.
func matchSentinel(err error, sentinels []error) (error, bool) {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s, true
		}
	}
	return nil, false
}

func handleError(c *gin.Context, err error) {
	respondError(c, err, "internal server error")
}

// handleLoadError is handleError for read endpoints, naming what failed to load.
func handleLoadError(c *gin.Context, err error, what string) {
	respondError(c, err, "failed to load "+what)
}

func respondError(c *gin.Context, err error, fallback string) {
	var fieldErrs domain.FieldErrors
	var joined *domain.AlreadyJoinedError

	if errors.As(err, &joined) {
		c.Header("Location", myChallengesPath+joined.UserChallengeID)
		c.JSON(http.StatusSeeOther, gin.H{
			"message":           "you have already joined this challenge",
			"user_challenge_id": joined.UserChallengeID,
		})
		return
	}

	if errors.As(err, &fieldErrs) {
		lang := matchLanguage(c.GetHeader("Accept-Language"))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  domain.ErrValidation.Error(),
			"fields": localizeFieldErrors(fieldErrs, lang),
		})
		return
	}

	if s, ok := matchSentinel(err, notFoundErrors); ok {
		c.JSON(http.StatusNotFound, gin.H{"error": s.Error()})
		return
	}
	if s, ok := matchSentinel(err, conflictErrors); ok {
		c.JSON(http.StatusConflict, gin.H{"error": s.Error()})
		return
	}
	if s, ok := matchSentinel(err, badRequestErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": s.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, services.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})

	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": domain.ErrValidation.Error()})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

// requireSession reads the session set by the auth middleware.
func requireSession(c *gin.Context) (domain.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return domain.Session{}, false
	}
	return session, true
}
