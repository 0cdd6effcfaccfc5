package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-manager/backend/internal/handlers"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTaskService struct {
	err       error
	tasks     []models.Task
	lastUser  string
	lastInput services.UpdateTaskInput
	lastOrder float64
	status    models.TaskStatus
}

func (m *MockTaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	m.lastUser = userID
	return m.tasks, m.err
}

func (m *MockTaskService) ListByStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error) {
	m.lastUser = userID
	m.status = status
	return m.tasks, m.err
}

func (m *MockTaskService) ListByLabel(ctx context.Context, userID string, labelID uuid.UUID) ([]models.Task, error) {
	return m.tasks, m.err
}

func (m *MockTaskService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Task{ID: id, UserID: userID, Title: "Test Task", Status: models.TaskStatusTodo}, nil
}

func (m *MockTaskService) GetCounts(ctx context.Context, userID string) (models.TaskCounts, error) {
	return models.TaskCounts{Todo: 2, InProgress: 1, Completed: 1, Total: 4}, m.err
}

func (m *MockTaskService) Create(ctx context.Context, userID string, input services.CreateTaskInput) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Task{ID: uuid.Must(uuid.NewV4()), UserID: userID, Title: input.Title, Priority: input.Priority}, nil
}

func (m *MockTaskService) Update(ctx context.Context, userID string, id uuid.UUID, input services.UpdateTaskInput) (*models.Task, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	return &models.Task{ID: id, UserID: userID}, nil
}

func (m *MockTaskService) Reorder(ctx context.Context, userID string, id uuid.UUID, order float64) (*models.Task, error) {
	m.lastOrder = order
	if m.err != nil {
		return nil, m.err
	}
	return &models.Task{ID: id, Order: order}, nil
}

func (m *MockTaskService) Remove(ctx context.Context, userID string, id uuid.UUID) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	return id, nil
}

func setupTaskHandler() (*MockTaskService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}
	handler := handlers.NewTaskHandler(mockService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", "alice")
		c.Next()
	})
	router.GET("/tasks", handler.GetTasks)
	router.GET("/tasks/counts", handler.GetTaskCounts)
	router.GET("/tasks/:id", handler.GetTaskByID)
	router.POST("/tasks", handler.CreateTask)
	router.PATCH("/tasks/:id", handler.UpdateTask)
	router.PUT("/tasks/:id/order", handler.ReorderTask)
	router.DELETE("/tasks/:id", handler.DeleteTask)

	return mockService, router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetTasks(t *testing.T) {
	mockService, router := setupTaskHandler()
	mockService.tasks = []models.Task{{Title: "one"}, {Title: "two"}}

	w := doRequest(router, "GET", "/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 2)
	assert.Equal(t, "alice", mockService.lastUser)
}

func TestGetTasks_ByStatus(t *testing.T) {
	mockService, router := setupTaskHandler()

	w := doRequest(router, "GET", "/tasks?status=in_progress", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TaskStatusInProgress, mockService.status)
}

func TestGetTaskCounts(t *testing.T) {
	_, router := setupTaskHandler()

	w := doRequest(router, "GET", "/tasks/counts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"todo":2,"in_progress":1,"completed":1,"total":4}`, w.Body.String())
}

func TestGetTaskByID_InvalidID(t *testing.T) {
	_, router := setupTaskHandler()

	w := doRequest(router, "GET", "/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask(t *testing.T) {
	_, router := setupTaskHandler()

	w := doRequest(router, "POST", "/tasks", map[string]interface{}{"title": "Write tests", "priority": "high"})
	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, "Write tests", task.Title)
	assert.Equal(t, models.TaskPriorityHigh, task.Priority)
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	_, router := setupTaskHandler()

	w := doRequest(router, "POST", "/tasks", "{invalid json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_PartialBody(t *testing.T) {
	mockService, router := setupTaskHandler()
	id := uuid.Must(uuid.NewV4())

	w := doRequest(router, "PATCH", "/tasks/"+id.String(), map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, mockService.lastInput.Status)
	assert.Equal(t, models.TaskStatusCompleted, *mockService.lastInput.Status)
	assert.Nil(t, mockService.lastInput.Title)
	assert.Nil(t, mockService.lastInput.Priority)
}

func TestReorderTask(t *testing.T) {
	mockService, router := setupTaskHandler()
	id := uuid.Must(uuid.NewV4())

	w := doRequest(router, "PUT", "/tasks/"+id.String()+"/order", map[string]interface{}{"order": 2.5})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.5, mockService.lastOrder)

	w = doRequest(router, "PUT", "/tasks/"+id.String()+"/order", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTask(t *testing.T) {
	_, router := setupTaskHandler()
	id := uuid.Must(uuid.NewV4())

	w := doRequest(router, "DELETE", "/tasks/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, w.Body.String())
}

func TestServiceErrorMapping(t *testing.T) {
	id := uuid.Must(uuid.NewV4()).String()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"not found", &services.Error{Code: services.CodeNotFound, Message: "task not found"}, http.StatusNotFound, "not_found"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"invalid argument", services.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"rate limited", &services.Error{Code: services.CodeRateLimited, Message: "slow down", RetryAfter: 1500 * time.Millisecond}, http.StatusTooManyRequests, "rate_limited"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, router := setupTaskHandler()
			mockService.err = tt.err

			w := doRequest(router, "GET", "/tasks/"+id, nil)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			if tt.code == "" {
				assert.Equal(t, "internal server error", body["error"])
			}
		})
	}
}

func TestServiceErrorMapping_RetryAfterRoundsUp(t *testing.T) {
	mockService, router := setupTaskHandler()
	mockService.err = &services.Error{Code: services.CodeRateLimited, Message: "slow down", RetryAfter: 1500 * time.Millisecond}

	w := doRequest(router, "POST", "/tasks", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}
