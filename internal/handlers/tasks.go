package handlers

import (
	"net/http"

	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		tasks, err := h.taskService.ListByStatus(c.Request.Context(), userID(c), models.TaskStatus(status))
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskCounts(c *gin.Context) {
	counts, err := h.taskService.GetCounts(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input services.CreateTaskInput
	if !bindJSON(c, &input) {
		return
	}
	task, err := h.taskService.Create(c.Request.Context(), userID(c), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateTaskInput
	if !bindJSON(c, &input) {
		return
	}
	task, err := h.taskService.Update(c.Request.Context(), userID(c), id, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ReorderTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Order *float64 `json:"order" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	task, err := h.taskService.Reorder(c.Request.Context(), userID(c), id, *input.Order)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	removed, err := h.taskService.Remove(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": removed})
}
