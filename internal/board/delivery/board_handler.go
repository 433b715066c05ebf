package delivery

import (
	"net/http"

	authdelivery "taskup-backend/internal/auth/delivery"
	"taskup-backend/internal/board/dto"
	"taskup-backend/internal/board/usecase"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardUsecase usecase.BoardUsecase
}

func NewBoardHandler(boardUsecase usecase.BoardUsecase) *BoardHandler {
	return &BoardHandler{
		boardUsecase: boardUsecase,
	}
}

// ListBoards returns owned and joined boards
// GET /api/boards
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)

	boards, err := h.boardUsecase.ListBoards(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list boards for user "+userID)
		return
	}
	c.JSON(http.StatusOK, dto.BoardsResponse{Boards: boards})
}

// CreateBoard
// POST /api/boards
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)

	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boardUsecase.CreateBoard(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "create board for user "+userID)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// JoinBoard joins by the 6 character code, with the password for private boards
// POST /api/boards/join
func (h *BoardHandler) JoinBoard(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)

	var req dto.JoinBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boardUsecase.JoinByCode(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "join board by code for user "+userID)
		return
	}
	c.JSON(http.StatusOK, board)
}

// GetBoard returns the board with sorted columns and tasks
// GET /api/boards/:id
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	detail, err := h.boardUsecase.GetBoard(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err, "get board "+boardID)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteBoard
// DELETE /api/boards/:id
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	if err := h.boardUsecase.DeleteBoard(c.Request.Context(), boardID, userID); err != nil {
		respondError(c, err, "delete board "+boardID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "board deleted"})
}

// RegenerateJoinCode
// POST /api/boards/:id/join-code
func (h *BoardHandler) RegenerateJoinCode(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	code, err := h.boardUsecase.RegenerateJoinCode(c.Request.Context(), boardID, userID)
	if err != nil {
		respondError(c, err, "regenerate join code of board "+boardID)
		return
	}
	c.JSON(http.StatusOK, dto.JoinCodeResponse{JoinCode: code})
}

// AddColumn
// POST /api/boards/:id/columns
func (h *BoardHandler) AddColumn(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	var req dto.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	column, err := h.boardUsecase.AddColumn(c.Request.Context(), boardID, userID, req.Name)
	if err != nil {
		respondError(c, err, "add column to board "+boardID)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// ReorderColumns
// PUT /api/boards/:id/columns/orders
func (h *BoardHandler) ReorderColumns(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserIDKey)
	boardID := c.Param("id")

	var req dto.OrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.boardUsecase.ReorderColumns(c.Request.Context(), boardID, userID, req.Orders)
	if err != nil {
		respondError(c, err, "reorder columns of board "+boardID)
		return
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Updated: updated})
}
