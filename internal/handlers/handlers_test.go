package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/messaging"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/harentsoaR/ayursutra-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router  *gin.Engine
	handler *Handler
	svc     *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	svc := services.New(services.Deps{Store: st, Broker: broker, Location: time.UTC})
	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	auth := services.NewAuthService(st, svc.Users, tokens, nil, nil, services.AuthConfig{PasswordCost: bcrypt.MinCost})
	chatbot := services.NewChatbotService(services.ChatbotConfig{}, nil)

	h := NewHandler(svc, auth, chatbot, nil)
	h.Development = true
	return &testServer{router: NewRouter(h, RouterConfig{}), handler: h, svc: svc}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *AppError       `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

type account struct {
	uid   string
	token string
}

func (s *testServer) signUp(t *testing.T, email, name, userType string) account {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"email":    email,
		"password": "secret123",
		"name":     name,
		"userType": userType,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	result := decodeData[struct {
		Token string `json:"token"`
		User  struct {
			UID string `json:"uid"`
		} `json:"user"`
	}](t, env)
	require.NotEmpty(t, result.Token)
	return account{uid: result.User.UID, token: result.Token}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Authorization header required", env.Error.Message)

	w, _ = s.do(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignUpLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")

	w, env := s.do(t, http.MethodGet, "/api/me", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeData[struct {
		Profile map[string]interface{} `json:"profile"`
		Source  string                 `json:"source"`
	}](t, env)
	assert.Equal(t, "Asha", me.Profile["name"])
	assert.Equal(t, "patient", me.Profile["userType"])
	assert.Equal(t, "index", me.Source)

	w, env = s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "asha@example.com", "password": "secret123", "name": "Asha", "userType": "patient",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.ErrEmailInUse.Error(), env.Error.Message)

	w, env = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.ErrInvalidCredentials.Error(), env.Error.Message)

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ASHA@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"email": "x@example.com", "password": "secret123", "name": "X", "userType": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")

	w, _ := s.do(t, http.MethodPost, "/auth/logout", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/me", asha.token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")

	w, _ := s.do(t, http.MethodDelete, "/api/account", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "asha@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/auth/password-reset", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = s.do(t, http.MethodPost, "/auth/password-reset/confirm", "", gin.H{"token": "bogus", "password": "newsecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatientAccessAndNotes(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	rao := s.signUp(t, "rao@example.com", "Dr. Rao", "practitioner")
	ravi := s.signUp(t, "ravi@example.com", "Ravi", "patient")

	w, _ := s.do(t, http.MethodGet, "/api/patients/"+asha.uid, rao.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/patients", asha.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Without a grant the practitioner's patient list is empty.
	w, env := s.do(t, http.MethodGet, "/api/patients", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]map[string]interface{}](t, env))

	w, _ = s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/practitioners", ravi.token, gin.H{"practitionerId": rao.uid})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/practitioners", asha.token, gin.H{"practitionerId": rao.uid})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decodeData[map[string]bool](t, env)["added"])

	w, env = s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/practitioners", asha.token, gin.H{"practitionerId": rao.uid})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeData[map[string]bool](t, env)["added"])

	w, _ = s.do(t, http.MethodGet, "/api/patients/"+asha.uid, rao.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/patients", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeData[[]map[string]interface{}](t, env)
	require.Len(t, listed, 1, "only the patient who granted access")
	assert.Equal(t, asha.uid, listed[0]["uid"])

	w, env = s.do(t, http.MethodGet, "/api/practitioners/"+rao.uid+"/patients", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, _ = s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/notes", asha.token, gin.H{"title": "Self"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/notes", rao.token, gin.H{
		"title": "Intake", "content": "Vata imbalance", "tags": []string{" Vata ", "vata", "sleep"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decodeData[map[string]interface{}](t, env)
	noteID, _ := note["id"].(string)
	require.NotEmpty(t, noteID)

	w, env = s.do(t, http.MethodGet, "/api/patients/"+asha.uid+"/notes", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, _ = s.do(t, http.MethodGet, "/api/patients/"+asha.uid+"/notes", ravi.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/notes/"+noteID, asha.token, gin.H{"content": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPut, "/api/notes/"+noteID, rao.token, gin.H{"content": "Vata calmer"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Vata calmer", decodeData[map[string]interface{}](t, env)["content"])
}

func TestUpdateUserRejectsOthersAndImmutableFields(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	ravi := s.signUp(t, "ravi@example.com", "Ravi", "patient")

	w, _ := s.do(t, http.MethodPut, "/api/users/"+asha.uid, ravi.token, gin.H{"name": "Hacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/users/"+asha.uid, asha.token, gin.H{"userType": "practitioner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/users/"+asha.uid, asha.token, gin.H{"age": "forty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPut, "/api/patients/"+asha.uid, asha.token, gin.H{"allowedPractitionerIds": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/users/"+asha.uid, asha.token, gin.H{"name": "Asha K"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/users/"+asha.uid, asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha K", decodeData[map[string]interface{}](t, env)["name"])

	w, _ = s.do(t, http.MethodGet, "/api/users/"+asha.uid, ravi.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	rao := s.signUp(t, "rao@example.com", "Dr. Rao", "practitioner")
	ravi := s.signUp(t, "ravi@example.com", "Ravi", "patient")

	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	w, env := s.do(t, http.MethodPost, "/api/sessions", asha.token, gin.H{
		"practitionerId": rao.uid,
		"patientId":      ravi.uid,
		"therapy":        "Abhyanga",
		"date":           date,
		"time":           "10:00 AM",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[map[string]interface{}](t, env)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, asha.uid, created["patientId"], "the caller is always the patient")
	assert.Equal(t, "pending", created["status"])

	w, env = s.do(t, http.MethodGet, "/api/sessions", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, env = s.do(t, http.MethodGet, "/api/sessions/upcoming", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, _ = s.do(t, http.MethodGet, "/api/sessions/"+id, ravi.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/sessions/"+id, rao.token, gin.H{"patientId": ravi.uid})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/sessions/"+id, rao.token, gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPut, "/api/sessions/"+id, rao.token, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decodeData[map[string]interface{}](t, env)["status"])

	// A mistyped value is refused and the practitioner's list still loads.
	w, _ = s.do(t, http.MethodPut, "/api/sessions/"+id, asha.token, gin.H{"duration": "ninety"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = s.do(t, http.MethodGet, "/api/sessions", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, env = s.do(t, http.MethodGet, "/api/notifications", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeData[[]map[string]interface{}](t, env))

	w, _ = s.do(t, http.MethodDelete, "/api/sessions/"+id, asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/sessions/"+id, asha.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, services.ErrSessionNotFound.Error(), env.Error.Message)
}

func TestFeedbackOncePerSession(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	rao := s.signUp(t, "rao@example.com", "Dr. Rao", "practitioner")

	w, env := s.do(t, http.MethodPost, "/api/sessions", rao.token, gin.H{
		"patientId": asha.uid, "therapy": "Shirodhara", "date": "2025-01-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sessionID, _ := decodeData[map[string]interface{}](t, env)["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/feedback", rao.token, gin.H{"sessionId": sessionID, "rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/feedback", asha.token, gin.H{"sessionId": sessionID, "rating": 4, "comments": "Relaxing"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fb := decodeData[map[string]interface{}](t, env)
	assert.Equal(t, rao.uid, fb["practitionerId"])
	assert.Equal(t, "Shirodhara", fb["therapy"])

	w, _ = s.do(t, http.MethodPost, "/api/feedback", asha.token, gin.H{"sessionId": sessionID, "rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/feedback", asha.token, gin.H{"sessionId": sessionID, "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/sessions/"+sessionID+"/feedback", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	w, env = s.do(t, http.MethodGet, "/api/feedback", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)
}

func TestMarkNotificationRead(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	ravi := s.signUp(t, "ravi@example.com", "Ravi", "patient")

	w, env := s.do(t, http.MethodPost, "/api/notifications", asha.token, gin.H{"title": "Drink warm water"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decodeData[map[string]interface{}](t, env)["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/notifications", ravi.token, gin.H{"userId": asha.uid, "title": "Spam"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/notifications/"+id+"/read", ravi.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	type readState struct {
		Read   bool       `json:"read"`
		ReadAt *time.Time `json:"readAt"`
	}
	w, env = s.do(t, http.MethodPatch, "/api/notifications/"+id+"/read", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeData[readState](t, env)
	assert.True(t, first.Read)
	require.NotNil(t, first.ReadAt)

	w, env = s.do(t, http.MethodPatch, "/api/notifications/"+id+"/read", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeData[readState](t, env)
	require.NotNil(t, second.ReadAt)
	assert.WithinDuration(t, *first.ReadAt, *second.ReadAt, time.Millisecond)
}

func TestProgressDeepMerge(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	ravi := s.signUp(t, "ravi@example.com", "Ravi", "patient")

	w, env := s.do(t, http.MethodGet, "/api/progress/"+asha.uid, asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)

	w, _ = s.do(t, http.MethodPut, "/api/progress/"+asha.uid, asha.token, gin.H{"treatmentProgress": gin.H{"currentDay": 3, "totalDays": 21}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodPut, "/api/progress/"+asha.uid, asha.token, gin.H{"treatmentProgress": gin.H{"currentDay": 4}})
	require.Equal(t, http.StatusOK, w.Code)
	progress := decodeData[struct {
		TreatmentProgress struct {
			CurrentDay int `json:"currentDay"`
			TotalDays  int `json:"totalDays"`
		} `json:"treatmentProgress"`
	}](t, env)
	assert.Equal(t, 4, progress.TreatmentProgress.CurrentDay)
	assert.Equal(t, 21, progress.TreatmentProgress.TotalDays)

	w, _ = s.do(t, http.MethodGet, "/api/progress/"+asha.uid, ravi.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMessages(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	rao := s.signUp(t, "rao@example.com", "Dr. Rao", "practitioner")

	w, _ := s.do(t, http.MethodPost, "/api/messages", asha.token, gin.H{"receiverId": "ghost", "content": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/messages", asha.token, gin.H{"receiverId": rao.uid, "content": "Namaste"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(t, http.MethodPost, "/api/messages", rao.token, gin.H{"receiverId": asha.uid, "content": "Namaste Asha"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/messages?with="+rao.uid, asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decodeData[[]map[string]interface{}](t, env)
	require.Len(t, messages, 2)
	assert.Equal(t, "Namaste", messages[0]["content"])

	w, _ = s.do(t, http.MethodGet, "/api/messages", asha.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")
	rao := s.signUp(t, "rao@example.com", "Dr. Rao", "practitioner")

	w, _ := s.do(t, http.MethodPost, "/api/patients/"+asha.uid+"/practitioners", asha.token, gin.H{"practitionerId": rao.uid})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/dashboard", rao.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dashboard := decodeData[struct {
		Profile  map[string]interface{}   `json:"profile"`
		Patients []map[string]interface{} `json:"patients"`
	}](t, env)
	assert.Equal(t, "Dr. Rao", dashboard.Profile["name"])
	require.Len(t, dashboard.Patients, 1)
	assert.Equal(t, asha.uid, dashboard.Patients[0]["uid"])
}

func TestChatbotRoutes(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chatbot/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"api_key_configured":false`)

	w, _ = s.do(t, http.MethodPost, "/api/chatbot/chat", asha.token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/chatbot/chat", asha.token, gin.H{"message": "What is Vata?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, services.ErrChatbotUnavailable.Error(), env.Error.Message)
}

func TestMigrationEndpoint(t *testing.T) {
	s := newTestServer(t)
	asha := s.signUp(t, "asha@example.com", "Asha", "patient")

	w, env := s.do(t, http.MethodPost, "/api/admin/migrations/users", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decodeData[map[string]interface{}](t, env)["migratedCount"])

	w, env = s.do(t, http.MethodGet, "/api/admin/migrations", asha.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]map[string]interface{}](t, env), 1)

	s.handler.Development = false
	w, _ = s.do(t, http.MethodPost, "/api/admin/migrations/users", asha.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
