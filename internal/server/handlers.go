package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tale-server/internal/story"
)

// apiError is the standardized error body.
type apiError struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListTales returns the titles of all ingested tales.
func (s *Server) handleListTales(c *gin.Context) {
	titles := s.tales.Titles()
	if len(titles) == 0 {
		c.JSON(http.StatusNotFound, apiError{Message: "No tales found or metadata not loaded."})
		return
	}
	c.JSON(http.StatusOK, titles)
}

// handleGetTale returns the metadata record for one tale.
func (s *Server) handleGetTale(c *gin.Context) {
	title := c.Param("title")
	meta, ok := s.tales.Get(title)
	if !ok {
		c.JSON(http.StatusNotFound, apiError{Message: "Tale not found."})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// handleGenerateTale runs one turn of the story pipeline.
func (s *Server) handleGenerateTale(c *gin.Context) {
	var req story.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "Invalid request body."})
		return
	}

	resp, err := s.engine.Run(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, story.ErrNoAction):
			c.JSON(http.StatusBadRequest, apiError{Message: "No valid action (choice or customInput) provided."})
		case errors.Is(err, story.ErrGenerationFailed), errors.Is(err, story.ErrInvalidResponse):
			s.log.Error("turn failed",
				zap.String("request_id", c.GetString("request_id")),
				zap.String("tale", req.TaleID),
				zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, apiError{Message: "LLM service failed to generate a valid response."})
		default:
			s.log.Error("turn failed unexpectedly",
				zap.String("request_id", c.GetString("request_id")),
				zap.String("tale", req.TaleID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, apiError{Message: "Failed to construct final response."})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
