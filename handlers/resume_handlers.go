package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"devfolio/api/email"
	"devfolio/api/models"
)

// ResumeHandlers runs the resume-request flow. This is the one user-facing
// flow where failures surface to the caller with a message instead of being
// swallowed.
type ResumeHandlers struct {
	Mailer *email.Mailer
}

func NewResumeHandlers(mailer *email.Mailer) *ResumeHandlers {
	return &ResumeHandlers{Mailer: mailer}
}

// RequestResume notifies the site owner of the request and confirms receipt
// to the requester.
func (h *ResumeHandlers) RequestResume(c *gin.Context) {
	var req models.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid email is required"})
		return
	}

	if err := h.Mailer.SendResumeRequest(req.Email); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to send resume request notification")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send request! Retry"})
		return
	}

	if err := h.Mailer.SendResumeConfirmation(req.Email); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to send confirmation email")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Emails sent successfully"})
}

// SendResume mails the resume PDF to the address in the query string. The
// link in the owner notification points here.
func (h *ResumeHandlers) SendResume(c *gin.Context) {
	address := strings.TrimSpace(c.Query("email"))
	if address == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Email is required!"})
		return
	}

	resumePath := os.Getenv("PATH_TO_RESUME")
	if resumePath == "" {
		resumePath = "resume.pdf"
	}

	if err := h.Mailer.SendResume(address, resumePath); err != nil {
		log.Error().Err(err).Str("email", address).Msg("Failed to send resume")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Emails sent successfully"})
}
