package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/ayursutra-api/internal/models"
)

// --- GET USER ---
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.canSeeUser(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, Forbidden("You do not have access to this user"))
		return
	}

	profile, err := h.svc.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, profile)
}

// --- UPDATE USER ---
// Only the user can change their own profile.
func (h *Handler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := caller(c); uid != id {
		h.respondError(c, Forbidden("You can only update your own profile"))
		return
	}

	var updates models.Fields
	if !h.bind(c, &updates) {
		return
	}
	if len(updates) == 0 {
		h.respondError(c, BadRequest("No update fields provided", nil))
		return
	}

	if err := h.svc.Users.UpdateUser(c.Request.Context(), id, updates); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Profile updated successfully"})
}

// canSeeUser lets a practitioner look at patients who granted them access
// and anyone look at a practitioner.
func (h *Handler) canSeeUser(c *gin.Context, id string) (bool, error) {
	if uid, _ := caller(c); uid == id {
		return true, nil
	}
	idx, err := h.svc.Users.GetIndex(c.Request.Context(), id)
	if err != nil {
		return false, err
	}
	if idx.UserType == models.RolePractitioner {
		return true, nil
	}
	return h.canSeePatient(c, id)
}

// --- PATIENTS ---
// ListPatients lists the patients who granted the calling practitioner access.
func (h *Handler) ListPatients(c *gin.Context) {
	uid, role := caller(c)
	if role != models.RolePractitioner {
		h.respondError(c, Forbidden("Only practitioners can list patients"))
		return
	}
	patients, err := h.svc.Practitioners.GetAssignedPatients(c.Request.Context(), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if patients == nil {
		patients = make([]*models.PatientProfile, 0)
	}
	respondOK(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.canSeePatient(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, Forbidden("You do not have access to this patient"))
		return
	}

	patient, err := h.svc.Patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := caller(c); uid != id {
		h.respondError(c, Forbidden("You can only update your own profile"))
		return
	}

	var updates models.Fields
	if !h.bind(c, &updates) {
		return
	}
	if err := h.svc.Patients.UpdatePatient(c.Request.Context(), id, updates); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Profile updated successfully"})
}

// AssignPractitioner is called by the patient to grant a practitioner access.
func (h *Handler) AssignPractitioner(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := caller(c); uid != id {
		h.respondError(c, Forbidden("Only the patient can grant access"))
		return
	}

	var req struct {
		PractitionerID string `json:"practitionerId" binding:"required"`
	}
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.svc.Practitioners.GetPractitioner(ctx, req.PractitionerID); err != nil {
		h.respondError(c, err)
		return
	}
	added, err := h.svc.Patients.AssignPractitioner(ctx, id, req.PractitionerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respond(c, status, gin.H{"added": added})
}

// --- PRACTITIONERS ---
func (h *Handler) ListPractitioners(c *gin.Context) {
	practitioners, err := h.svc.Users.GetAllPractitioners(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if practitioners == nil {
		practitioners = make([]*models.PractitionerProfile, 0)
	}
	respondOK(c, practitioners)
}

func (h *Handler) GetPractitioner(c *gin.Context) {
	practitioner, err := h.svc.Practitioners.GetPractitioner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, practitioner)
}

func (h *Handler) UpdatePractitioner(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := caller(c); uid != id {
		h.respondError(c, Forbidden("You can only update your own profile"))
		return
	}

	var updates models.Fields
	if !h.bind(c, &updates) {
		return
	}
	if err := h.svc.Practitioners.UpdatePractitioner(c.Request.Context(), id, updates); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Profile updated successfully"})
}

func (h *Handler) GetAssignedPatients(c *gin.Context) {
	id := c.Param("id")
	if uid, _ := caller(c); uid != id {
		h.respondError(c, Forbidden("You can only list your own patients"))
		return
	}

	patients, err := h.svc.Practitioners.GetAssignedPatients(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if patients == nil {
		patients = make([]*models.PatientProfile, 0)
	}
	respondOK(c, patients)
}
