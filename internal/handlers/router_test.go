package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services"
	"github.com/tommyfonseca7/teams-coms-public/internal/services/servicetest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiFixture struct {
	t      *testing.T
	router *gin.Engine
	users  *servicetest.Users
	files  *servicetest.Storage
}

func newAPIFixture(t *testing.T, maxUpload int64) *apiFixture {
	users := servicetest.NewUsers()
	messages := servicetest.NewMessages()
	files := servicetest.NewStorage(time.Now)
	changes := servicetest.NewChanges()

	tokens := services.NewTokenStore(time.Hour)
	t.Cleanup(tokens.Close)

	act := services.NewActivityService(users, servicetest.NewTotals(), messages)
	push := services.NewNotificationService(nil, users)

	router, err := NewRouter(Deps{
		Auth: services.NewAuthService(users, servicetest.NewCredentials(), nil, tokens, services.AuthConfig{
			Secret:      []byte("handler-secret"),
			TTL:         time.Hour,
			AdminEmails: []string{"ana@aroeira.pt"},
		}),
		Activity:       act,
		Team:           services.NewTeamService(users),
		News:           services.NewNewsService(servicetest.NewNews(), users, files, act, push),
		Events:         services.NewEventService(servicetest.NewEvents(), users, act, push),
		Tasks:          services.NewTaskService(servicetest.NewTasks(), users, act, push),
		Schedule:       services.NewScheduleService(files, changes, users, act, push),
		Chat:           services.NewChatService(messages, users),
		AllowedOrigins: []string{"*"},
		MaxUploadSize:  maxUpload,
	})
	require.NoError(t, err)

	return &apiFixture{t: t, router: router, users: users, files: files}
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.send(req, token)
}

func (f *apiFixture) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) register(name, email string) *models.AuthResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"nome": name, "email": email, "password": "segredo123", "password2": "segredo123",
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	w := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	f := newAPIFixture(t, 1<<20)

	ana := f.register("Ana", "ana@aroeira.pt")
	assert.Equal(t, models.RoleAdmin, ana.Role)

	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"nome": "Outra", "email": "ANA@aroeira.pt", "password": "segredo123", "password2": "segredo123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@aroeira.pt", "password": "errada123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@aroeira.pt", "password": "segredo123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/auth/refresh-token", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))

	// the refreshed-away token no longer works
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/home", ana.Token, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/home", refreshed.Token, nil).Code)

	w = f.do(http.MethodPost, "/api/auth/update-fcm-token", refreshed.Token, gin.H{"fcmToken": "device-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "device-1", f.users.Profiles[refreshed.UID].FCMToken)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/auth/logout", refreshed.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/home", refreshed.Token, nil).Code)
}

func TestRegisterValidation(t *testing.T) {
	f := newAPIFixture(t, 1<<20)

	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"nome": "Rui", "email": "not-an-email", "password": "segredo123", "password2": "segredo123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")

	w = f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"nome": "Rui", "email": "rui@aroeira.pt", "password": "segredo123", "password2": "outra1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	for _, path := range []string{"/api/home", "/api/news", "/api/team", "/api/chat/messages"} {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path, "", nil).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/home", "garbage", nil).Code)
}

func TestManagerOnlyRoutes(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	ana := f.register("Ana", "ana@aroeira.pt")
	rui := f.register("Rui", "rui@aroeira.pt")

	event := gin.H{"doe": time.Now().Add(48 * time.Hour), "name": "Reunião", "field": "Sala 2"}

	w := f.do(http.MethodPost, "/api/events", rui.Token, event)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodPost, "/api/events", ana.Token, event)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/news/any", rui.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/tasks/any", rui.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/changes/any", rui.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/horario/2024/4", rui.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden,
		f.do(http.MethodPut, "/api/team/"+ana.UID+"/role", rui.Token, gin.H{"role": "worker"}).Code)

	// anyone may log a schedule change
	w = f.do(http.MethodPost, "/api/changes", rui.Token, gin.H{"colaborador": "Eva", "mudancas": "Troca de turno"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// promoting rui opens the gate at once
	w = f.do(http.MethodPut, "/api/team/"+rui.UID+"/role", ana.Token, gin.H{"role": "moderator"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(http.MethodPost, "/api/events", rui.Token, event)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPut, "/api/team/"+rui.UID+"/role", ana.Token, gin.H{"role": "boss"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHomeNotificationsAndSeen(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	ana := f.register("Ana", "ana@aroeira.pt")
	rui := f.register("Rui", "rui@aroeira.pt")

	home := func() models.HomeResponse {
		w := f.do(http.MethodGet, "/api/home", rui.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp models.HomeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	first := home()
	assert.Empty(t, first.Notifications)
	assert.False(t, first.CanManage)
	require.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/home/seen", rui.Token, nil).Code)

	event := gin.H{"doe": time.Now().Add(48 * time.Hour), "name": "Jantar", "field": "Refeitório"}
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/events", ana.Token, event).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/events", ana.Token, event).Code)

	after := home()
	require.Len(t, after.Notifications, 1)
	assert.EqualValues(t, "events", after.Notifications[0].Category)
	assert.EqualValues(t, 2, after.Notifications[0].Count)

	require.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/home/seen", rui.Token, nil).Code)
	assert.Empty(t, home().Notifications)
}

func TestChatUnreadClearsOnRead(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	ana := f.register("Ana", "ana@aroeira.pt")
	rui := f.register("Rui", "rui@aroeira.pt")

	// reading once records messagesSeen
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/chat/messages", rui.Token, nil).Code)

	for _, text := range []string{"bom dia", "alguém viu as chaves?"} {
		w := f.do(http.MethodPost, "/api/chat/messages", ana.Token, gin.H{"text": text})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(http.MethodGet, "/api/home", rui.Token, nil)
	var home models.HomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &home))
	assert.EqualValues(t, 2, home.UnreadMessages)

	w = f.do(http.MethodGet, "/api/chat/messages?limit=1", rui.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Messages []models.Message `json:"messages"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Ana", page.Messages[0].UserName)

	w = f.do(http.MethodGet, "/api/home", rui.Token, nil)
	home = models.HomeResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &home))
	assert.Zero(t, home.UnreadMessages)
}

func TestNewsUpload(t *testing.T) {
	f := newAPIFixture(t, 1<<10)
	ana := f.register("Ana", "ana@aroeira.pt")

	body, contentType := multipartBody(t, map[string]string{"title": "Festa", "description": "Sexta às 20h"},
		"image", "festa.png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	w := f.send(req, ana.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.News
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ImageURL)

	body, contentType = multipartBody(t, map[string]string{"title": "Grande", "description": "x"},
		"image", "big.png", bytes.Repeat([]byte("a"), 4<<10))
	req = httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	w = f.send(req, ana.Token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/news/"+created.ID, ana.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/news/"+created.ID, ana.Token, nil).Code)
}

func TestScheduleUploadAndDownload(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	ana := f.register("Ana", "ana@aroeira.pt")

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/horario/2024/4", ana.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/horario/2024/maio", ana.Token, nil).Code)

	body, contentType := multipartBody(t, nil, "file", "maio.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/horario/2024/4", body)
	req.Header.Set("Content-Type", contentType)
	w := f.send(req, ana.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/horario/2024/4", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sf models.ScheduleFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sf))
	assert.Equal(t, "maio.pdf", sf.Name)

	w = f.do(http.MethodGet, "/api/horario/2024/4/file", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	body, contentType = multipartBody(t, nil, "", "", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/horario/2024/4", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, f.send(req, ana.Token).Code)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/horario/2024/4", ana.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/horario/2024/4", ana.Token, nil).Code)
}

func TestTaskCompletion(t *testing.T) {
	f := newAPIFixture(t, 1<<20)
	ana := f.register("Ana", "ana@aroeira.pt")
	rui := f.register("Rui", "rui@aroeira.pt")

	start := time.Now().Add(24 * time.Hour)
	w := f.do(http.MethodPost, "/api/tasks", ana.Token, gin.H{
		"name": "Inventário", "startingDate": start, "finishingDate": start.Add(2 * time.Hour),
		"assignedUsers": []string{rui.UID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))

	w = f.do(http.MethodGet, "/api/tasks", rui.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tasks []models.TaskView `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 1)
	assert.True(t, list.Tasks[0].CanComplete)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/tasks/"+task.ID+"/complete", ana.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/tasks/"+task.ID+"/complete", rui.Token, nil).Code)

	w = f.do(http.MethodPost, "/api/tasks", ana.Token, gin.H{
		"name": "Ao contrário", "startingDate": start, "finishingDate": start.Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
