package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classferreiracode/track-my-task/internal/domain"
)

type nameRequest struct {
	Name string `json:"name"`
}

type orderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

func (s *Server) handleCreateBoard(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	board, err := s.boards.CreateBoard(c.Request.Context(), actorID(c), c.Param("id"), req.Name)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": boardResponse(board)})
}

func (s *Server) handleListBoards(c *gin.Context) {
	boards, err := s.boards.ListBoards(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(boards))
	for _, b := range boards {
		out = append(out, boardResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleDeleteBoard(c *gin.Context) {
	if err := s.boards.DeleteBoard(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted."})
}

func (s *Server) handleCreateColumn(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	column, err := s.boards.CreateColumn(c.Request.Context(), actorID(c), c.Param("id"), req.Name)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": columnResponse(column)})
}

func (s *Server) handleListColumns(c *gin.Context) {
	columns, err := s.boards.ListColumns(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(columns))
	for _, col := range columns {
		out = append(out, columnResponse(col))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleReorderColumns(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	err := s.orders.ReorderColumns(c.Request.Context(), actorID(c), c.Param("id"), req.OrderedIDs)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Column order updated."})
}

func boardResponse(b *domain.Board) gin.H {
	return gin.H{
		"id":           b.ID,
		"workspace_id": b.WorkspaceID,
		"name":         b.Name,
		"slug":         b.Slug,
		"sort_order":   b.SortOrder,
	}
}

func columnResponse(col *domain.Column) gin.H {
	return gin.H{
		"id":          col.ID,
		"board_id":    col.BoardID,
		"name":        col.Name,
		"slug":        col.Slug,
		"sort_order":  col.SortOrder,
		"is_terminal": col.IsTerminal(),
	}
}
