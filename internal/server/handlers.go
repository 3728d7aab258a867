package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-interviewer/internal/api"
	"ai-interviewer/internal/interviewer"
	"ai-interviewer/internal/report"
	"ai-interviewer/internal/storage"
)

func (s *Server) start(c *gin.Context) {
	var req api.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	reply, err := s.service.Start(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	reply, err := s.service.Chat(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) speak(c *gin.Context) {
	var req api.SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	audio, err := s.service.Speak(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", audio)
}

func (s *Server) report(c *gin.Context) {
	id := api.ParseID(c.Param("interview_id"))

	filename, content, err := s.service.Report(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, report.ContentType, []byte(content))
}

func (s *Server) health(c *gin.Context) {
	if err := s.service.Ping(c.Request.Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps service errors onto status codes. Unexpected errors are
// logged and hidden from the caller.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interviewer.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Interview not found"})
	case errors.Is(err, storage.ErrAlreadyFinished):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Interview already finished"})
	case errors.Is(err, storage.ErrNoQuestion):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Interview has no open question"})
	case errors.Is(err, interviewer.ErrSpeech):
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("speech failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Could not generate speech"})
	default:
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
