package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/database"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	pool     *database.DatabasePool
	verifier *auth.TokenVerifier
	engine   *gin.Engine
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	pool, err := database.OpenInMemory()
	s.Require().NoError(err)
	s.pool = pool

	s.verifier = auth.NewTokenVerifier("router-test-secret", "")
	svc := services.New(repositories.New(pool.DB), ratelimit.NoopLimiter{}, nil)
	s.engine = New(svc, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Verifier:       s.verifier,
	})
}

func (s *RouterTestSuite) TearDownTest() {
	s.pool.Close()
}

func (s *RouterTestSuite) request(user, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := s.verifier.IssueToken(user, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, dest interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (s *RouterTestSuite) createTask(user, title string) models.Task {
	w := s.request(user, "POST", "/api/tasks", map[string]interface{}{"title": title})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task models.Task
	s.decode(w, &task)
	return task
}

func (s *RouterTestSuite) TestRequiresAuthentication() {
	w := s.request("", "GET", "/api/tasks", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request("", "GET", "/live", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterTestSuite) TestTaskLifecycle() {
	task := s.createTask("alice", "Ship it")
	s.Equal(models.TaskStatusTodo, task.Status)
	s.Equal(models.TaskPriorityMedium, task.Priority)

	w := s.request("alice", "PATCH", "/api/tasks/"+task.ID.String(), map[string]interface{}{"status": "completed"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.Task
	s.decode(w, &updated)
	s.Equal(models.TaskStatusCompleted, updated.Status)
	s.NotNil(updated.CompletedAt)

	w = s.request("alice", "GET", "/api/tasks?status=completed", nil)
	var completed []models.Task
	s.decode(w, &completed)
	s.Len(completed, 1)

	w = s.request("alice", "GET", "/api/tasks/counts", nil)
	s.JSONEq(`{"todo":0,"in_progress":0,"completed":1,"total":1}`, w.Body.String())

	w = s.request("alice", "GET", "/api/tasks/"+task.ID.String()+"/activity", nil)
	var activity []models.TaskActivity
	s.decode(w, &activity)
	s.Len(activity, 2)

	w = s.request("alice", "DELETE", "/api/tasks/"+task.ID.String(), nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request("alice", "GET", "/api/tasks/"+task.ID.String(), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestOwnershipIsEnforced() {
	task := s.createTask("alice", "Private")

	w := s.request("bob", "GET", "/api/tasks/"+task.ID.String(), nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("bob", "DELETE", "/api/tasks/"+task.ID.String(), nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("bob", "GET", "/api/tasks", nil)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *RouterTestSuite) TestLabelsAndComments() {
	task := s.createTask("alice", "Tagged")

	w := s.request("alice", "POST", "/api/labels", map[string]interface{}{"name": "urgent", "color": "#ff0000"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var label models.Label
	s.decode(w, &label)

	path := "/api/tasks/" + task.ID.String() + "/labels/" + label.ID.String()
	s.Equal(http.StatusCreated, s.request("alice", "POST", path, nil).Code)
	s.Equal(http.StatusBadRequest, s.request("alice", "POST", path, nil).Code)

	w = s.request("alice", "GET", "/api/labels/"+label.ID.String()+"/tasks", nil)
	var tagged []models.Task
	s.decode(w, &tagged)
	s.Len(tagged, 1)

	w = s.request("alice", "POST", "/api/tasks/"+task.ID.String()+"/comments", map[string]interface{}{"content": "looks good"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var comment models.TaskComment
	s.decode(w, &comment)

	s.Equal(http.StatusOK, s.request("alice", "DELETE", "/api/comments/"+comment.ID.String(), nil).Code)
	s.Equal(http.StatusOK, s.request("alice", "DELETE", path, nil).Code)
	s.Equal(http.StatusNotFound, s.request("alice", "DELETE", path, nil).Code)
}

func (s *RouterTestSuite) TestPreferencesAndDashboard() {
	w := s.request("alice", "GET", "/api/preferences", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request("alice", "PATCH", "/api/preferences", map[string]interface{}{"theme": "dark", "show_completed": false})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var prefs models.UserPreferences
	s.decode(w, &prefs)
	s.Equal(models.Theme("dark"), prefs.Theme)
	s.False(prefs.ShowCompleted)

	s.createTask("alice", "one")
	w = s.request("alice", "GET", "/api/dashboard/summary", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary services.DashboardSummary
	s.decode(w, &summary)
	s.Equal(int64(1), summary.Tasks.Total)

	s.Equal(http.StatusOK, s.request("alice", "GET", "/api/dashboard/activity?limit=5", nil).Code)
	s.Equal(http.StatusBadRequest, s.request("alice", "GET", "/api/dashboard/activity?limit=abc", nil).Code)
	s.Equal(http.StatusOK, s.request("alice", "GET", "/api/dashboard/totals", nil).Code)
}

func (s *RouterTestSuite) TestThreads() {
	w := s.request("alice", "POST", "/api/ai/threads", map[string]interface{}{"title": "Planning"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var thread models.Thread
	s.decode(w, &thread)

	w = s.request("alice", "POST", "/api/ai/threads/"+thread.ID.String()+"/messages", map[string]interface{}{"content": "hello"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request("alice", "GET", "/api/ai/threads/"+thread.ID.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail models.ThreadWithMessages
	s.decode(w, &detail)
	s.Len(detail.Messages, 1)

	s.Equal(http.StatusForbidden, s.request("bob", "GET", "/api/ai/threads/"+thread.ID.String(), nil).Code)
	s.Equal(http.StatusOK, s.request("alice", "DELETE", "/api/ai/threads/"+thread.ID.String(), nil).Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&services.Services{}, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Verifier:       auth.NewTokenVerifier("secret", ""),
	})

	req, _ := http.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig_NoOrigins(t *testing.T) {
	config := corsConfig(nil)
	require.NoError(t, config.Validate())
	assert.True(t, config.AllowAllOrigins)
	assert.False(t, config.AllowCredentials)
}
