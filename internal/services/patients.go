package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
)

type PatientService struct {
	users *UserService
	log   *logger.Logger
}

func (s *PatientService) GetPatient(ctx context.Context, uid string) (*models.PatientProfile, error) {
	profile, err := s.users.GetUserByRole(ctx, uid, models.RolePatient)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return profile.(*models.PatientProfile), nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, uid string, updates models.Fields) error {
	err := s.users.UpdateUserByRole(ctx, uid, models.RolePatient, updates)
	if errors.Is(err, ErrProfileNotFound) {
		return ErrPatientNotFound
	}
	return err
}

// AssignPractitioner grants practitionerID access to the patient. It reports
// whether the grant was new; granting twice leaves the list unchanged.
func (s *PatientService) AssignPractitioner(ctx context.Context, patientID, practitionerID string) (bool, error) {
	if practitionerID == "" {
		return false, fmt.Errorf("%w: practitioner id is required", ErrValidation)
	}
	patient, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return false, err
	}
	if patient.Allows(practitionerID) {
		return false, nil
	}

	allowed := append(append([]string{}, patient.AllowedPractitionerIDs...), practitionerID)
	if err := s.UpdatePatient(ctx, patientID, models.Fields{"allowedPractitionerIds": allowed}); err != nil {
		return false, err
	}
	s.log.Info("practitioner assigned", "patientId", patientID, "practitionerId", practitionerID)
	return true, nil
}

// CanAccess reports whether the practitioner is on the patient's allow list.
func (s *PatientService) CanAccess(ctx context.Context, patientID, practitionerID string) (bool, error) {
	patient, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return false, err
	}
	return patient.Allows(practitionerID), nil
}

type PractitionerService struct {
	users *UserService
	store store.Store
}

func (s *PractitionerService) GetPractitioner(ctx context.Context, uid string) (*models.PractitionerProfile, error) {
	profile, err := s.users.GetUserByRole(ctx, uid, models.RolePractitioner)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}
	return profile.(*models.PractitionerProfile), nil
}

func (s *PractitionerService) UpdatePractitioner(ctx context.Context, uid string, updates models.Fields) error {
	err := s.users.UpdateUserByRole(ctx, uid, models.RolePractitioner, updates)
	if errors.Is(err, ErrProfileNotFound) {
		return ErrPractitionerNotFound
	}
	return err
}

// GetAssignedPatients lists the patients whose allow list names the practitioner.
func (s *PractitionerService) GetAssignedPatients(ctx context.Context, practitionerID string) ([]*models.PatientProfile, error) {
	var patients []*models.PatientProfile
	q := store.NewQuery(store.ArrayContains("allowedPractitionerIds", practitionerID))
	if err := s.store.Find(ctx, models.CollectionPatients, q, &patients); err != nil {
		return nil, fmt.Errorf("list assigned patients: %w", err)
	}
	return patients, nil
}
