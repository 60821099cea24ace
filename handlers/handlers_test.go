package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"saubio/models"
	"saubio/services/flow"
	"saubio/services/locale"
	"saubio/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCatalog(t *testing.T) *locale.Catalog {
	t.Helper()
	catalog, err := locale.Load("fr")
	require.NoError(t, err)
	return catalog
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// fakeSessions records calls and returns canned snapshots.
type fakeSessions struct {
	snapshot  *models.FlowSnapshot
	err       error
	updates   chan models.FlowSnapshot
	lastPatch models.SessionPatch
	lastStart flow.StartInput
	overrides models.StageOverrides
	userID    string
}

func (f *fakeSessions) Start(_ context.Context, userID string, in flow.StartInput) (*models.FlowSnapshot, error) {
	f.userID, f.lastStart = userID, in
	return f.snapshot, f.err
}

func (f *fakeSessions) Get(_ context.Context, _, userID string) (*models.FlowSnapshot, error) {
	f.userID = userID
	return f.snapshot, f.err
}

func (f *fakeSessions) Apply(_ context.Context, _, _ string, patch models.SessionPatch) (*models.FlowSnapshot, error) {
	f.lastPatch = patch
	return f.snapshot, f.err
}

func (f *fakeSessions) SetOverrides(_ context.Context, _ string, overrides models.StageOverrides) (*models.FlowSnapshot, error) {
	f.overrides = overrides
	return f.snapshot, f.err
}

func (f *fakeSessions) RunSuggestionFetch(context.Context, models.SuggestionFetchPayload) error {
	return nil
}

func (f *fakeSessions) Subscribe(context.Context, string, string) (<-chan models.FlowSnapshot, error) {
	return f.updates, f.err
}

func (f *fakeSessions) Cancel(context.Context, string, string) error { return f.err }

type fakeBookingService struct {
	bookings []models.BookingRequest
	clientID string
	opts     models.BookingFilterOptions
}

func (f *fakeBookingService) ListForClient(_ context.Context, clientID string, opts models.BookingFilterOptions) ([]models.BookingRequest, error) {
	f.clientID, f.opts = clientID, opts
	return f.bookings, nil
}

func (f *fakeBookingService) ListAll(_ context.Context, opts models.BookingFilterOptions) ([]models.BookingRequest, error) {
	f.opts = opts
	return f.bookings, nil
}

func (f *fakeBookingService) Sync(context.Context) (int, error) { return 0, nil }

func TestGetSteps(t *testing.T) {
	h := NewFlowHandler(&fakeSessions{}, testCatalog(t), zap.NewNop())
	router := gin.New()
	router.GET("/steps", h.GetSteps)

	w := doJSON(t, router, http.MethodGet, "/steps?path=/bookings/account?x=1&locale=en", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stepper models.Stepper
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stepper))
	assert.Equal(t, models.StepAccount, stepper.ActiveStep)
	require.Len(t, stepper.Steps, 3)
	assert.Equal(t, "Account", stepper.Steps[2].Label)
	assert.Equal(t, models.StepStatusCompleted, stepper.Steps[0].Status)
	assert.Equal(t, models.StepStatusCurrent, stepper.Steps[2].Status)
	assert.True(t, stepper.Steps[1].ConnectorFilled)
	assert.False(t, stepper.Steps[2].ConnectorFilled)
}

func TestGetSteps_NoPathIsDetails(t *testing.T) {
	h := NewFlowHandler(&fakeSessions{}, testCatalog(t), zap.NewNop())
	router := gin.New()
	router.GET("/steps", h.GetSteps)

	w := doJSON(t, router, http.MethodGet, "/steps", nil)
	var stepper models.Stepper
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stepper))
	assert.Equal(t, models.StepDetails, stepper.ActiveStep)
}

func TestDeriveTimeline(t *testing.T) {
	h := NewFlowHandler(&fakeSessions{}, testCatalog(t), zap.NewNop())
	router := gin.New()
	router.POST("/timeline", h.DeriveTimeline)

	body := map[string]any{
		"filtersComplete": true,
		"suggestions":     map[string]any{"status": "error"},
		"smartMatch":      false,
		"manualSelected":  0,
		"overrides": map[string]any{
			"team": map[string]any{"status": "bogus"},
		},
	}
	w := doJSON(t, router, http.MethodPost, "/timeline?locale=en", body)
	require.Equal(t, http.StatusOK, w.Code)

	var timeline models.Timeline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timeline))
	require.Len(t, timeline.Stages, 3)
	assert.Equal(t, models.StageStatusCompleted, timeline.Stages[0].Status)
	assert.Equal(t, models.StageStatusAlert, timeline.Stages[1].Status)
	assert.Equal(t, models.StageStatusPending, timeline.Stages[2].Status)
	require.NotNil(t, timeline.Reminder)
	assert.Equal(t, 1, timeline.Reminder.Remaining)
}

func TestDeriveTimeline_BadBody(t *testing.T) {
	h := NewFlowHandler(&fakeSessions{}, testCatalog(t), zap.NewNop())
	router := gin.New()
	router.POST("/timeline", h.DeriveTimeline)

	req := httptest.NewRequest(http.MethodPost, "/timeline", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEndpoints(t *testing.T) {
	sessions := &fakeSessions{snapshot: &models.FlowSnapshot{SessionID: "s1", Version: 1}}
	h := NewFlowHandler(sessions, testCatalog(t), zap.NewNop())

	router := gin.New()
	router.Use(asUser("u1"))
	router.POST("/session", h.StartSession)
	router.GET("/session/:sessionID", h.GetSession)
	router.PATCH("/session/:sessionID", h.UpdateSession)
	router.DELETE("/session/:sessionID", h.CancelSession)

	w := doJSON(t, router, http.MethodPost, "/session?locale=de", map[string]any{"pathname": "/bookings/planning"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", sessions.userID)
	assert.Equal(t, "de", sessions.lastStart.Locale)

	w = doJSON(t, router, http.MethodPatch, "/session/s1", map[string]any{"pathname": "/bookings/select-provider", "smartMatch": false})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessions.lastPatch.Pathname)
	assert.Equal(t, "/bookings/select-provider", *sessions.lastPatch.Pathname)
	require.NotNil(t, sessions.lastPatch.SmartMatch)
	assert.False(t, *sessions.lastPatch.SmartMatch)
	assert.Nil(t, sessions.lastPatch.Draft)

	w = doJSON(t, router, http.MethodDelete, "/session/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", flow.ErrSessionNotFound, http.StatusNotFound},
		{"forbidden", flow.ErrForbidden, http.StatusForbidden},
		{"conflict", flow.ErrVersionConflict, http.StatusConflict},
		{"invalid", &flow.FlowError{Code: "invalidInput", Message: "bad"}, http.StatusBadRequest},
		{"storage", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFlowHandler(&fakeSessions{err: tt.err}, testCatalog(t), zap.NewNop())
			router := gin.New()
			router.Use(asUser("u1"))
			router.GET("/session/:sessionID", h.GetSession)

			w := doJSON(t, router, http.MethodGet, "/session/s1", nil)
			assert.Equal(t, tt.status, w.Code)

			var body utils.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
		})
	}
}

// closeNotifyRecorder lets gin's Stream run against a recorder.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStreamSession(t *testing.T) {
	updates := make(chan models.FlowSnapshot, 3)
	sessions := &fakeSessions{snapshot: &models.FlowSnapshot{SessionID: "s1", Version: 2}, updates: updates}
	h := NewFlowHandler(sessions, testCatalog(t), zap.NewNop())
	h.Heartbeat = time.Hour

	router := gin.New()
	router.Use(asUser("u1"))
	router.GET("/session/:sessionID/events", h.StreamSession)

	updates <- models.FlowSnapshot{SessionID: "s1", Version: 2}
	updates <- models.FlowSnapshot{SessionID: "s1", Version: 3}
	close(updates)

	w := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session/s1/events", nil))

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(body, "event:snapshot"), body)
	assert.Contains(t, body, `"version":3`)
}

func TestBookingsHandler(t *testing.T) {
	svc := &fakeBookingService{bookings: []models.BookingRequest{
		{ID: "b1", ClientID: "u1", Status: models.BookingStatusConfirmed},
	}}
	h := NewBookingsHandler(svc, testCatalog(t))

	router := gin.New()
	router.Use(asUser("u1"))
	router.GET("/bookings", h.ListMyBookings)
	router.GET("/admin/bookings", h.ListAllBookings)

	w := doJSON(t, router, http.MethodGet, "/bookings?status=confirmed&city=%20Berlin%20&locale=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.clientID)
	assert.Equal(t, "confirmed", svc.opts.Status)
	assert.Equal(t, " Berlin ", svc.opts.City)

	var body struct {
		Bookings []BookingView `json:"bookings"`
		Total    int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "b1", body.Bookings[0].ID)
	assert.Equal(t, "Confirmed", body.Bookings[0].StatusLabel)

	w = doJSON(t, router, http.MethodGet, "/admin/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusAll, svc.opts.Status)
}

func TestCountryEndpoints(t *testing.T) {
	router := gin.New()
	router.GET("/countries", ListCountries)
	router.GET("/countries/:code", GetCountry)

	w := doJSON(t, router, http.MethodGet, "/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.CountryOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.NotEmpty(t, list)

	w = doJSON(t, router, http.MethodGet, "/countries/fr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fr models.CountryOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fr))
	assert.Equal(t, "FR", fr.Code)
	assert.Equal(t, "+33", fr.DialCode)

	w = doJSON(t, router, http.MethodGet, "/countries/zz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocaleHandler(t *testing.T) {
	h := NewLocaleHandler(testCatalog(t), "https://api.saubio.fr")
	router := gin.New()
	router.GET("/config", h.GetRuntimeConfig)
	router.GET("/locales/:locale", h.GetMessages)

	w := doJSON(t, router, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg struct {
		APIBaseURL    string   `json:"apiBaseUrl"`
		DefaultLocale string   `json:"defaultLocale"`
		Locales       []string `json:"locales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "https://api.saubio.fr", cfg.APIBaseURL)
	assert.Equal(t, "fr", cfg.DefaultLocale)
	assert.Equal(t, "fr", cfg.Locales[0])

	w = doJSON(t, router, http.MethodGet, "/locales/EN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flow.steps.account.label")

	w = doJSON(t, router, http.MethodGet, "/locales/xx", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAdminHandler(&fakeSessions{}, "ops@saubio.test", string(hash))

	router := gin.New()
	router.POST("/login", h.LoginHandler)

	w := doJSON(t, router, http.MethodPost, "/login", map[string]string{"email": "OPS@saubio.test", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	sub, role, err := utils.ExtractClaims(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops@saubio.test", sub)
	assert.Equal(t, utils.RoleAdmin, role)

	w = doJSON(t, router, http.MethodPost, "/login", map[string]string{"email": "ops@saubio.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/login", map[string]string{"email": "ops@saubio.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLogin_NotConfigured(t *testing.T) {
	h := NewAdminHandler(&fakeSessions{}, "", "")
	router := gin.New()
	router.POST("/login", h.LoginHandler)

	w := doJSON(t, router, http.MethodPost, "/login", map[string]string{"email": "a@b.c", "password": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetOverrides(t *testing.T) {
	sessions := &fakeSessions{snapshot: &models.FlowSnapshot{SessionID: "s1"}}
	h := NewAdminHandler(sessions, "", "")
	router := gin.New()
	router.PUT("/session/:sessionID/overrides", h.SetOverridesHandler)

	body := map[string]any{"overrides": map[string]any{
		"suggestions": map[string]any{"status": "COMPLETED", "count": 7},
		"team":        map[string]any{"status": "paused"},
	}}
	w := doJSON(t, router, http.MethodPut, "/session/s1/overrides", body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Contains(t, sessions.overrides, models.StageSuggestions)
	assert.Equal(t, models.OverrideCompleted, *sessions.overrides[models.StageSuggestions].Status)
	assert.Equal(t, 7, *sessions.overrides[models.StageSuggestions].Count)
	assert.Equal(t, models.OverrideUnknown, *sessions.overrides[models.StageTeam].Status)
}

func TestHealthHandler(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthHandler)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, w.Code)
	assert.Contains(t, w.Body.String(), `"status"`)
}
