package handlers

import (
	"errors"
	"io"
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	threadService services.ThreadService
}

func NewThreadHandler(threadService services.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

func (h *ThreadHandler) GetThreads(c *gin.Context) {
	threads, err := h.threadService.ListThreads(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *ThreadHandler) GetThread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	thread, err := h.threadService.GetThread(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var input services.CreateThreadInput
	// the body is optional; a thread may start untitled
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	thread, err := h.threadService.CreateThread(c.Request.Context(), userID(c), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

func (h *ThreadHandler) SendMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.SendMessageInput
	if !bindJSON(c, &input) {
		return
	}
	message, err := h.threadService.SendMessage(c.Request.Context(), userID(c), id, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateThreadInput
	if !bindJSON(c, &input) {
		return
	}
	thread, err := h.threadService.UpdateThread(c.Request.Context(), userID(c), id, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	removed, err := h.threadService.DeleteThread(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": removed})
}
