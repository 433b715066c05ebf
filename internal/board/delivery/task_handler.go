package delivery

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	authdelivery "taskup-backend/internal/auth/delivery"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/usecase"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

// CreateTask appends a task to the column
// POST /api/columns/:id/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	columnID := c.Param("id")

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), columnID, userID, &req)
	if err != nil {
		respondError(c, err, "create task in column "+columnID)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ReorderTasks
// PUT /api/columns/:id/tasks/orders
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	columnID := c.Param("id")

	var req dto.OrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.taskUsecase.ReorderTasks(c.Request.Context(), columnID, userID, req.Orders)
	if err != nil {
		respondError(c, err, "reorder tasks in column "+columnID)
		return
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Updated: updated})
}

// PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), taskID, userID, &req)
	if err != nil {
		respondError(c, err, "update task "+taskID)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	if err := h.taskUsecase.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		respondError(c, err, "delete task "+taskID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// POST /api/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.setCompleted(c, true)
}

// POST /api/tasks/:id/reopen
func (h *TaskHandler) ReopenTask(c *gin.Context) {
	h.setCompleted(c, false)
}

func (h *TaskHandler) setCompleted(c *gin.Context, completed bool) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	task, err := h.taskUsecase.SetCompleted(c.Request.Context(), taskID, userID, completed)
	if err != nil {
		respondError(c, err, "set completion of task "+taskID)
		return
	}
	c.JSON(http.StatusOK, task)
}

// MoveTask moves the task to the end of another column on the same board
// POST /api/tasks/:id/move
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.MoveTask(c.Request.Context(), taskID, userID, req.ColumnID)
	if err != nil {
		respondError(c, err, "move task "+taskID)
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /api/tasks/:id/assignees
func (h *TaskHandler) Assign(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignee, err := h.taskUsecase.AssignByEmail(c.Request.Context(), taskID, userID, req.Email)
	if err != nil {
		respondError(c, err, "assign task "+taskID)
		return
	}
	c.JSON(http.StatusCreated, assignee)
}

// DELETE /api/tasks/:id/assignees/:userId
func (h *TaskHandler) Unassign(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	if err := h.taskUsecase.Unassign(c.Request.Context(), taskID, userID, c.Param("userId")); err != nil {
		respondError(c, err, "unassign task "+taskID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assignee removed"})
}

// GET /api/tasks/:id/assignees
func (h *TaskHandler) ListAssignees(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	assignees, err := h.taskUsecase.ListAssignees(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err, "list assignees of task "+taskID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignees": assignees})
}

// POST /api/tasks/:id/comments
func (h *TaskHandler) AddComment(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.taskUsecase.AddComment(c.Request.Context(), taskID, userID, &req)
	if err != nil {
		respondError(c, err, "comment on task "+taskID)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GET /api/tasks/:id/comments
func (h *TaskHandler) ListComments(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	comments, err := h.taskUsecase.ListComments(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err, "list comments of task "+taskID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// UploadAttachment takes a multipart form with a single "file" part
// POST /api/tasks/:id/attachments
func (h *TaskHandler) UploadAttachment(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer file.Close()

	upload := dto.AttachmentUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}
	attachment, err := h.taskUsecase.AddAttachment(c.Request.Context(), taskID, userID, upload, file)
	if err != nil {
		respondError(c, err, "upload attachment to task "+taskID)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// GET /api/tasks/:id/attachments
func (h *TaskHandler) ListAttachments(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	taskID := c.Param("id")

	attachments, err := h.taskUsecase.ListAttachments(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err, "list attachments of task "+taskID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// DownloadAttachment streams the stored file
// GET /api/attachments/:id
func (h *TaskHandler) DownloadAttachment(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	attachmentID := c.Param("id")

	attachment, body, err := h.taskUsecase.OpenAttachment(c.Request.Context(), attachmentID, userID)
	if err != nil {
		respondError(c, err, "download attachment "+attachmentID)
		return
	}
	defer body.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment.FileName}))
	c.Header("Content-Length", strconv.FormatInt(attachment.Size, 10))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// headers are already out, nothing left to report to the client
		c.Error(err)
	}
}
