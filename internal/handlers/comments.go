package handlers

import (
	"net/http"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) GetTaskComments(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	comments, err := h.commentService.ListByTask(c.Request.Context(), userID(c), taskID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.CreateCommentInput
	if !bindJSON(c, &input) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), userID(c), taskID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	removed, err := h.commentService.Remove(c.Request.Context(), userID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": removed})
}
