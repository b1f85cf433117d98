package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/cache"
	"github.com/comitanigiacomo/thirtyday/internal/adapters/repository"
	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
	store  *repository.InMemoryStore
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	return setupAPIWithStore(t, repository.NewInMemoryStore(), nil)
}

func setupAPIWithStore(t *testing.T, store *repository.InMemoryStore, notifier services.Notifier) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return &testAPI{router: NewRouter(testDependencies(store, notifier)), store: store}
}

func testDependencies(store *repository.InMemoryStore, notifier services.Notifier) RouterDependencies {
	validator := domain.NewFormValidator()

	tokens := services.NewTokenService("test-secret", "thirtyday-test", time.Hour, store.Users(), cache.NewMemoryTokenDenylist())
	authSvc := services.NewAuthService(store.Users(), tokens)
	challengeSvc := services.NewChallengeService(store.Challenges(), validator)
	draftSvc := services.NewDraftService(cache.NewMemoryDraftStore(time.Hour), challengeSvc, validator)
	participationSvc := services.NewParticipationService(store.Challenges(), store.Participation(), notifier, nil)
	notificationSvc := services.NewNotificationService(store.Notifications())

	return RouterDependencies{
		AuthHandler:          NewAuthHandler(authSvc),
		ChallengeHandler:     NewChallengeHandler(challengeSvc, participationSvc),
		DraftHandler:         NewDraftHandler(draftSvc),
		ParticipationHandler: NewParticipationHandler(participationSvc),
		NotificationHandler:  NewNotificationHandler(notificationSvc),
		TokenService:         tokens,
		StartTime:            time.Now(),
	}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signUp registers a fresh account and returns its bearer token.
func (a *testAPI) signUp(t *testing.T, role domain.Role) string {
	t.Helper()
	email := fmt.Sprintf("%s_%s@example.com", role, uuid.NewString())

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "passwordStrong123",
		"name":     "Tester",
		"role":     string(role),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "passwordStrong123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func challengePayload() domain.ChallengeForm {
	form := domain.NewChallengeForm()
	form.Name = "Morning Pages"
	form.Description = "Write three pages every morning before anything else."
	form.DurationDays = 2
	form.Tasks = []domain.TaskInput{
		{DayNumber: 1, Title: "First pages"},
		{DayNumber: 2, Title: "Second pages"},
	}
	form.Metrics = []domain.MetricInput{
		{MetricName: "Focus", MetricType: domain.MetricTypeSlider, CollectionFrequency: []string{"initial", "daily", "final"}},
	}
	return form
}

// publishedChallenge creates and publishes a challenge, returning its full record.
func (a *testAPI) publishedChallenge(t *testing.T, hostToken string) domain.FullChallenge {
	t.Helper()

	w := a.do(http.MethodPost, "/api/v1/challenges", hostToken, challengePayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var full domain.FullChallenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &full))

	w = a.do(http.MethodPost, "/api/v1/challenges/"+full.Challenge.ID+"/publish", hostToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return full
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
