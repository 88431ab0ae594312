package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/response"
)

type contactService interface {
	Submit(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactMessage, error)
}

// ContactHandler accepts public contact-form submissions.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(service contactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit godoc
// @Summary Submit the contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body models.ContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "name, email and message are required"))
		return
	}
	if _, err := h.service.Submit(c.Request.Context(), req, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true, "message": "Thank you for your message. We will get back to you soon."})
}
