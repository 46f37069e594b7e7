package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stack-advisor/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRecommend(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	s.recommend(c, req)
}

func (s *Server) handleValidate(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	s.validate(c, req)
}

func (s *Server) handleClusterRecommend(c *gin.Context) {
	req, ok := s.fetchRequest(c)
	if !ok {
		return
	}
	s.recommend(c, req)
}

func (s *Server) handleClusterValidate(c *gin.Context) {
	req, ok := s.fetchRequest(c)
	if !ok {
		return
	}
	s.validate(c, req)
}

func (s *Server) recommend(c *gin.Context, req *model.Request) {
	rec, err := s.advisor.Recommend(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("recommendation failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) validate(c *gin.Context, req *model.Request) {
	result, err := s.advisor.Validate(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("validation failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.metrics.observeFindings(result.Summary)
	c.JSON(http.StatusOK, result)
}

// bindRequest decodes and validates the request body. Payload problems are
// answered with 400 and every problem found.
func (s *Server) bindRequest(c *gin.Context) (*model.Request, bool) {
	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request payload: " + err.Error()})
		return nil, false
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return &req, true
}

func (s *Server) fetchRequest(c *gin.Context) (*model.Request, bool) {
	cluster := c.Param("cluster")
	req, err := s.source.FetchRequest(c.Request.Context(), cluster)
	if err != nil {
		s.logger.Error().Err(err).Str("cluster", cluster).Msg("failed to fetch cluster inventory")
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return nil, false
	}
	return req, true
}
