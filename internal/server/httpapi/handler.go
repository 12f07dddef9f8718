package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) root(c *gin.Context) {
	c.String(http.StatusOK, "API is running and connected to %s!", s.opts.Backend)
}

func (s *HTTPServer) register(c *gin.Context) {
	req, err := services.DecodeRegistration(c.Request.Body)
	if err != nil {
		s.handleServiceError(c, err, "An internal server error occurred.")
		return
	}

	user, err := s.registration.Register(c.Request.Context(), req)
	if err != nil {
		s.handleServiceError(c, err, "An internal server error occurred.")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *HTTPServer) listUsers(c *gin.Context) {
	list, err := s.acceptance.ListAll(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err, "Could not retrieve users.")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (s *HTTPServer) resetAccepted(c *gin.Context) {
	if _, err := s.acceptance.ResetAll(c.Request.Context()); err != nil {
		s.handleServiceError(c, err, "Could not reset users' acceptance status.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All users now have the 'accepted' field set to null."})
}

func (s *HTTPServer) listAccepted(c *gin.Context) {
	list, err := s.acceptance.ListByAccepted(c.Request.Context(), true)
	if err != nil {
		s.handleServiceError(c, err, "Could not retrieve accepted users.")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (s *HTTPServer) listRejected(c *gin.Context) {
	list, err := s.acceptance.ListByAccepted(c.Request.Context(), false)
	if err != nil {
		s.handleServiceError(c, err, "Could not retrieve rejected users.")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

type statusRequest struct {
	Accepted any `json:"accepted"`
}

func (s *HTTPServer) setStatus(c *gin.Context) {
	id := c.Param("id")

	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.handleServiceError(c, fmt.Errorf("%w: %w", common.ErrorInvalidInput, err), "Could not update user status.")
		return
	}

	accepted, err := s.acceptance.SetAccepted(c.Request.Context(), id, body.Accepted)
	if err != nil {
		s.handleServiceError(c, err, "Could not update user status.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s acceptance status updated to %t.", id, accepted)})
}

func (s *HTTPServer) listWorkshops(c *gin.Context) {
	list, err := s.workshops.List(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err, "Could not retrieve workshops.")
		return
	}
	if list == nil {
		list = []models.WorkshopView{}
	}
	c.JSON(http.StatusOK, list)
}

func nonNil(list []*models.User) []*models.User {
	if list == nil {
		return []*models.User{}
	}
	return list
}
