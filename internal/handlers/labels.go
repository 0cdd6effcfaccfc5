package handlers

import (
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	labelService services.LabelService
	taskService  services.TaskService
}

func NewLabelHandler(labelService services.LabelService, taskService services.TaskService) *LabelHandler {
	return &LabelHandler{labelService: labelService, taskService: taskService}
}

func (h *LabelHandler) GetLabels(c *gin.Context) {
	labels, err := h.labelService.List(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *LabelHandler) GetLabelByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	label, err := h.labelService.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) GetLabelTasks(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.taskService.ListByLabel(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var input services.CreateLabelInput
	if !bindJSON(c, &input) {
		return
	}
	label, err := h.labelService.Create(c.Request.Context(), userID(c), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateLabelInput
	if !bindJSON(c, &input) {
		return
	}
	label, err := h.labelService.Update(c.Request.Context(), userID(c), id, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	removed, err := h.labelService.Remove(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": removed})
}

func (h *LabelHandler) GetTaskLabels(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	labels, err := h.labelService.ListByTask(c.Request.Context(), userID(c), taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

func (h *LabelHandler) AddLabelToTask(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	labelID, ok := paramID(c, "label_id")
	if !ok {
		return
	}
	link, err := h.labelService.AddToTask(c.Request.Context(), userID(c), taskID, labelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *LabelHandler) RemoveLabelFromTask(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	labelID, ok := paramID(c, "label_id")
	if !ok {
		return
	}
	if err := h.labelService.RemoveFromTask(c.Request.Context(), userID(c), taskID, labelID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "label_id": labelID})
}
