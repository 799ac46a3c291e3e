package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// --- CREATE SESSION ---
// The caller is always one of the two participants.
func (h *Handler) CreateSession(c *gin.Context) {
	var session models.Session
	if !h.bind(c, &session) {
		return
	}

	uid, role := caller(c)
	switch role {
	case models.RolePatient:
		session.PatientID = uid
	case models.RolePractitioner:
		session.PractitionerID = uid
	default:
		h.respondError(c, Forbidden("Only patients and practitioners can book sessions"))
		return
	}

	if _, err := h.svc.Sessions.CreateSession(c.Request.Context(), &session); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, session)
}

// --- LIST SESSIONS ---
func (h *Handler) GetSessions(c *gin.Context) {
	uid, role := caller(c)
	sessions, err := h.svc.Sessions.GetUserSessions(c.Request.Context(), uid, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = make([]models.Session, 0)
	}
	respondOK(c, sessions)
}

func (h *Handler) GetUpcomingSessions(c *gin.Context) {
	uid, role := caller(c)
	sessions, err := h.svc.Sessions.GetUpcomingSessions(c.Request.Context(), uid, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = make([]models.Session, 0)
	}
	respondOK(c, sessions)
}

// --- SINGLE SESSION ---
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.participantSession(c)
	if !ok {
		return
	}
	respondOK(c, session)
}

func (h *Handler) UpdateSession(c *gin.Context) {
	session, ok := h.participantSession(c)
	if !ok {
		return
	}

	var updates models.Fields
	if !h.bind(c, &updates) {
		return
	}
	for _, f := range []string{"patientId", "practitionerId"} {
		if _, ok := updates[f]; ok {
			h.respondError(c, BadRequest("Session participants cannot be changed", services.ErrImmutableField))
			return
		}
	}

	updated, err := h.svc.Sessions.UpdateSession(c.Request.Context(), session.ID, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, updated)
}

func (h *Handler) CancelSession(c *gin.Context) {
	session, ok := h.participantSession(c)
	if !ok {
		return
	}
	if err := h.svc.Sessions.CancelSession(c.Request.Context(), session.ID); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Session cancelled"})
}

// participantSession loads :id and checks the caller takes part in it.
// Sessions the caller is not part of look the same as missing ones.
func (h *Handler) participantSession(c *gin.Context) (*models.Session, bool) {
	session, err := h.svc.Sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if uid, _ := caller(c); !session.Involves(uid) {
		h.respondError(c, services.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}
