package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"github.com/harentsoaR/ayursutra-api/internal/viewmodel"
)

// --- FEEDBACK ---
func (h *Handler) CreateFeedback(c *gin.Context) {
	var f models.Feedback
	if !h.bind(c, &f) {
		return
	}

	uid, role := caller(c)
	if role != models.RolePatient {
		h.respondError(c, Forbidden("Only patients can leave feedback"))
		return
	}

	ctx := c.Request.Context()
	session, err := h.svc.Sessions.GetSession(ctx, f.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if session.PatientID != uid {
		h.respondError(c, services.ErrSessionNotFound)
		return
	}
	f.PatientID = uid
	f.PractitionerID = session.PractitionerID
	if f.Therapy == "" {
		f.Therapy = session.Therapy
	}
	if f.PatientName == "" {
		f.PatientName = session.PatientName
	}

	if _, err := h.svc.Feedback.CreateFeedback(ctx, &f); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, f)
}

func (h *Handler) GetMyFeedback(c *gin.Context) {
	uid, _ := caller(c)
	list, err := h.svc.Feedback.GetUserFeedback(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = make([]models.Feedback, 0)
	}
	respondOK(c, list)
}

func (h *Handler) GetSessionFeedback(c *gin.Context) {
	session, ok := h.participantSession(c)
	if !ok {
		return
	}
	list, err := h.svc.Feedback.GetSessionFeedback(c.Request.Context(), session.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = make([]models.Feedback, 0)
	}
	respondOK(c, list)
}

// --- PRACTITIONER NOTES ---
func (h *Handler) GetPatientNotes(c *gin.Context) {
	patientID := c.Param("id")
	if !h.allowPatient(c, patientID) {
		return
	}
	notes, err := h.svc.Notes.GetPatientNotes(c.Request.Context(), patientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if notes == nil {
		notes = make([]models.PractitionerNote, 0)
	}
	respondOK(c, notes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	var note models.PractitionerNote
	if !h.bind(c, &note) {
		return
	}

	patientID := c.Param("id")
	uid, role := caller(c)
	if role != models.RolePractitioner {
		h.respondError(c, services.ErrNotPractitioner)
		return
	}
	if !h.allowPatient(c, patientID) {
		return
	}
	note.PractitionerID = uid
	note.PatientID = patientID

	if _, err := h.svc.Notes.CreateNote(c.Request.Context(), &note); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, note)
}

func (h *Handler) GetNote(c *gin.Context) {
	note, err := h.svc.Notes.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if uid, _ := caller(c); note.PractitionerID != uid && note.PatientID != uid {
		h.respondError(c, services.ErrNoteNotFound)
		return
	}
	respondOK(c, note)
}

// UpdateNote is open only to the note's author.
func (h *Handler) UpdateNote(c *gin.Context) {
	ctx := c.Request.Context()
	note, err := h.svc.Notes.GetNote(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if uid, _ := caller(c); note.PractitionerID != uid {
		h.respondError(c, Forbidden("Only the author can edit this note"))
		return
	}

	var updates models.Fields
	if !h.bind(c, &updates) {
		return
	}
	updated, err := h.svc.Notes.UpdateNote(ctx, note.ID, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, updated)
}

// --- PROGRESS ---
func (h *Handler) GetProgress(c *gin.Context) {
	userID := c.Param("userId")
	if !h.allowPatient(c, userID) {
		return
	}
	progress, err := h.svc.Progress.GetProgress(c.Request.Context(), userID)
	if errors.Is(err, services.ErrProgressNotFound) {
		respondOK(c, nil)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, progress)
}

func (h *Handler) UpdateProgress(c *gin.Context) {
	userID := c.Param("userId")
	if !h.allowPatient(c, userID) {
		return
	}

	var fields models.Fields
	if !h.bind(c, &fields) {
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.Progress.UpdateProgress(ctx, userID, fields); err != nil {
		h.respondError(c, err)
		return
	}
	progress, err := h.svc.Progress.GetProgress(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, progress)
}

// --- MESSAGES ---
func (h *Handler) SendMessage(c *gin.Context) {
	var m models.Message
	if !h.bind(c, &m) {
		return
	}
	m.SenderID, _ = caller(c)

	if _, err := h.svc.Users.GetIndex(c.Request.Context(), m.ReceiverID); err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.svc.Messages.SendMessage(c.Request.Context(), &m); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, m)
}

// GetConversation expects the other participant in ?with=.
func (h *Handler) GetConversation(c *gin.Context) {
	other := c.Query("with")
	if other == "" {
		h.respondError(c, BadRequest("Query parameter 'with' is required", nil))
		return
	}
	uid, _ := caller(c)
	messages, err := h.svc.Messages.GetConversation(c.Request.Context(), uid, other)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, messages)
}

// --- DASHBOARD ---
func (h *Handler) GetDashboard(c *gin.Context) {
	uid, role := caller(c)
	dashboard, err := viewmodel.LoadDashboard(c.Request.Context(), h.svc, uid, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, dashboard)
}

// --- MIGRATIONS ---
func (h *Handler) MigrateUsers(c *gin.Context) {
	if !h.Development {
		h.respondError(c, &AppError{Code: http.StatusNotFound, Message: "Not found"})
		return
	}
	result, err := h.svc.Migration.MigrateExistingUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("user migration ran over http", "migratedCount", result.MigratedCount)
	respondOK(c, result)
}

func (h *Handler) MigrationHistory(c *gin.Context) {
	if !h.Development {
		h.respondError(c, &AppError{Code: http.StatusNotFound, Message: "Not found"})
		return
	}
	runs, err := h.svc.Migration.History(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if runs == nil {
		runs = make([]models.MigrationRun, 0)
	}
	respondOK(c, runs)
}

// allowPatient answers 403 itself when the caller cannot see the patient.
func (h *Handler) allowPatient(c *gin.Context, patientID string) bool {
	ok, err := h.canSeePatient(c, patientID)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	if !ok {
		h.respondError(c, Forbidden("You do not have access to this patient"))
		return false
	}
	return true
}
