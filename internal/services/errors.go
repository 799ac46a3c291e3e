package services

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrInvalidRole          = errors.New("invalid user type")
	ErrImmutableField       = errors.New("field cannot be changed")
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("user profile not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoteNotFound         = errors.New("note not found")
	ErrProgressNotFound     = errors.New("progress not found")
	ErrDuplicateFeedback    = errors.New("feedback already submitted for this session")
	ErrNotPractitioner      = errors.New("only practitioners can write notes")

	ErrEmailInUse          = errors.New("an account with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrInvalidResetToken   = errors.New("password reset link is invalid or has expired")
	ErrRequiresRecentLogin = errors.New("Please log in again before deleting your account for security.")

	ErrChatbotUnavailable = errors.New("chatbot is not configured")
	ErrChatbotUpstream    = errors.New("AI service returned an error")
)
