package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"projecthub/internal/auth"
	"projecthub/internal/database/testutil"
	"projecthub/internal/handler"
	"projecthub/internal/middleware"
	"projecthub/internal/repository"
	"projecthub/internal/service"
	"projecthub/internal/storage"
)

type testAPI struct {
	router *gin.Engine
	tokens *auth.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.MustOpenTestDB(t)

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	notes := repository.NewNoteRepository(db)
	invites := repository.NewInviteRepository(db)
	uploads := repository.NewUploadRepository(db)

	store, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)

	tokens := auth.NewManager("handler-test", time.Hour)
	userSvc := service.NewUserService(users, tokens)

	userH := handler.NewUserHandler(userSvc)
	projectH := handler.NewProjectHandler(service.NewProjectService(projects, users, tasks, notes, invites), userSvc)
	taskH := handler.NewTaskHandler(service.NewTaskService(projects, tasks), userSvc)
	noteH := handler.NewNoteHandler(service.NewNoteService(projects, notes))
	inviteH := handler.NewInviteHandler(service.NewInviteService(invites))
	uploadH := handler.NewUploadHandler(service.NewUploadService(projects, uploads, store))
	healthH := handler.NewHealthHandler(db)

	r := gin.New()
	r.GET("/api/health", healthH.Health)
	r.POST("/api/auth/register", userH.Register)
	r.GET("/api/uploads/:filename", uploadH.Serve)

	api := r.Group("/api", middleware.JWTAuthMiddleware(tokens))
	api.GET("/projects", projectH.List)
	api.POST("/projects", projectH.Create)
	api.GET("/projects/:id", projectH.Get)
	api.PATCH("/projects/:id", projectH.Update)
	api.DELETE("/projects/:id", projectH.Delete)
	api.POST("/projects/:id/invite", projectH.Invite)
	api.GET("/projects/:id/tasks", taskH.List)
	api.POST("/projects/:id/tasks", taskH.Create)
	api.GET("/projects/:id/notes", noteH.List)
	api.POST("/projects/:id/notes", noteH.Create)
	api.GET("/tasks/:id", taskH.GetByID)
	api.PATCH("/tasks/:id", taskH.Update)
	api.DELETE("/tasks/:id", taskH.Delete)
	api.DELETE("/notes/:id", noteH.Delete)
	api.GET("/invites", inviteH.List)
	api.POST("/invites/:id/respond", inviteH.Respond)
	api.POST("/uploads", uploadH.Upload)
	api.DELETE("/uploads/:filename", uploadH.Delete)

	return &testAPI{router: r, tokens: tokens}
}

type account struct {
	ID    string
	Email string
	Token string
}

func (a *testAPI) register(t *testing.T, name, email string) account {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", "", handler.RegisterRequest{
		Name: name, Email: email, Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handler.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return account{ID: resp.User.ID, Email: resp.User.Email, Token: resp.Token}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
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

func (a *testAPI) upload(t *testing.T, token, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
