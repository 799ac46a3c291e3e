package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/middleware"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/utils"
)

// Handler holds the services every route needs.
type Handler struct {
	svc     *services.Services
	auth    *services.AuthService
	chatbot *services.ChatbotService
	log     *logger.Logger

	// Development enables the admin migration endpoint.
	Development bool
}

func NewHandler(svc *services.Services, auth *services.AuthService, chatbot *services.ChatbotService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		svc:     svc,
		auth:    auth,
		chatbot: chatbot,
		log:     log.With("component", "http"),
	}
}

// caller returns the authenticated user's id and role.
func caller(c *gin.Context) (string, models.Role) {
	return c.GetString(middleware.ContextUserID), models.Role(c.GetString(middleware.ContextUserRole))
}

func callerClaims(c *gin.Context) *utils.Claims {
	v, _ := c.Get(middleware.ContextClaims)
	claims, _ := v.(*utils.Claims)
	return claims
}

// bind decodes the JSON body, answering 400 itself on failure.
func (h *Handler) bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.respondError(c, BadRequest("Invalid request body", err))
		return false
	}
	return true
}

// canSeePatient allows the patient themselves and any practitioner they
// have granted access to.
func (h *Handler) canSeePatient(c *gin.Context, patientID string) (bool, error) {
	uid, role := caller(c)
	if uid == patientID {
		return true, nil
	}
	if role != models.RolePractitioner {
		return false, nil
	}
	return h.svc.Patients.CanAccess(c.Request.Context(), patientID, uid)
}
