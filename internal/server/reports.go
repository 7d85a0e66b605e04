package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleExportReport(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{"start": []string{"must be a date in YYYY-MM-DD format"}},
		})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{"end": []string{"must be a date in YYYY-MM-DD format"}},
		})
		return
	}

	rows, err := s.reports.Export(c.Request.Context(), actorID(c), c.Param("id"), start, end)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("time-report-%s-to-%s.csv",
		start.Format(dateLayout), end.Format(dateLayout))
	c.Header("Content-Type", "text/csv; charset=UTF-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	// UTF-8 BOM so spreadsheet tools pick up accented column names.
	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return
	}

	w := csv.NewWriter(c.Writer)
	w.Comma = ';'
	_ = w.Write([]string{"Task", "Status", "Day", "Play", "Pause", "Total (minutes)", "Total (hours)"})
	for _, row := range rows {
		_ = w.Write([]string{
			row.TaskTitle,
			row.Status,
			row.Day,
			row.ClockIn,
			row.ClockOut,
			formatDecimal(row.Minutes),
			formatDecimal(row.Hours),
		})
	}
	w.Flush()
}

// formatDecimal trims trailing zeros the way the JSON number rendering
// would, leaving integers bare.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	label, err := s.labels.CreateLabel(c.Request.Context(), actorID(c), req.Name, req.Color)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"id": label.ID, "name": label.Name, "color": label.Color,
	}})
}

func (s *Server) handleListLabels(c *gin.Context) {
	labels, err := s.labels.ListLabels(c.Request.Context(), actorID(c))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(labels))
	for _, l := range labels {
		out = append(out, gin.H{"id": l.ID, "name": l.Name, "color": l.Color})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) handleCreateTag(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload."})
		return
	}

	tag, err := s.labels.CreateTag(c.Request.Context(), actorID(c), req.Name, req.Color)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"id": tag.ID, "name": tag.Name, "color": tag.Color,
	}})
}

func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.labels.ListTags(c.Request.Context(), actorID(c))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(tags))
	for _, t := range tags {
		out = append(out, gin.H{"id": t.ID, "name": t.Name, "color": t.Color})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
