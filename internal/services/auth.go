package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/store"
	"github.com/harentsoaR/ayursutra-api/internal/utils"
	"github.com/patrickmn/go-cache"
)

type AuthConfig struct {
	RecentLoginWindow time.Duration
	ResetTokenTTL     time.Duration
	ResetURL          string
	PasswordCost      int
}

type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "signed_in"
	AuthSignedOut AuthEventType = "signed_out"
	AuthDeleted   AuthEventType = "deleted"
)

// AuthEvent is emitted whenever a user's signed-in state changes.
type AuthEvent struct {
	Type     AuthEventType
	Identity Identity
}

// AuthService is the authentication boundary: credentials, session tokens
// and the auth-state event stream.
type AuthService struct {
	store  store.Store
	users  *UserService
	tokens *utils.TokenIssuer
	mailer Mailer
	log    *logger.Logger
	now    func() time.Time
	cfg    AuthConfig

	revoked *cache.Cache // token id -> struct{}
	resets  *cache.Cache // reset token -> uid

	mu        sync.Mutex
	listeners map[int]func(AuthEvent)
	nextID    int
}

func NewAuthService(st store.Store, users *UserService, tokens *utils.TokenIssuer, mailer Mailer, log *logger.Logger, cfg AuthConfig) *AuthService {
	if cfg.RecentLoginWindow <= 0 {
		cfg.RecentLoginWindow = 5 * time.Minute
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	if mailer == nil {
		mailer = NewLogMailer(log)
	}
	return &AuthService{
		store:     st,
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		log:       log.With("service", "auth"),
		now:       time.Now,
		cfg:       cfg,
		revoked:   cache.New(24*time.Hour, 10*time.Minute),
		resets:    cache.New(cfg.ResetTokenTTL, 10*time.Minute),
		listeners: make(map[int]func(AuthEvent)),
	}
}

// WithClock replaces the service's time source.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

type SignUpRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Name     string      `json:"name" validate:"required"`
	UserType models.Role `json:"userType" validate:"required,oneof=patient practitioner"`
	Phone    string      `json:"phone"`

	Age              int    `json:"age" validate:"gte=0"`
	Gender           string `json:"gender"`
	Dosha            string `json:"dosha"`
	MedicalHistory   string `json:"medicalHistory"`
	CurrentCondition string `json:"currentCondition"`

	Specialization string   `json:"specialization"`
	Experience     string   `json:"experience"`
	Qualifications string   `json:"qualifications"`
	Expertise      []string `json:"expertise"`
}

type AuthResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Identity  Identity       `json:"user"`
	Profile   models.Profile `json:"profile"`
	Source    ProfileSource  `json:"profileSource,omitempty"`
	Claims    *utils.Claims  `json:"-"`
}

// SignUp creates the credential and then the user's index and profile rows.
// If the profile write fails the credential stays, and the next login
// recovers through ResolveProfile.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.accountByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, ErrInvalidCredentials) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password, s.cfg.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := models.Account{
		UID:          uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Set(ctx, models.CollectionAccounts, account.UID, account); err != nil {
		s.log.Error(err, "failed to create account", "email", req.Email)
		return nil, fmt.Errorf("create account: %w", err)
	}

	profile := profileFromSignUp(account.UID, req)
	if err := s.users.CreateUserIndex(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	id := Identity{UID: account.UID, Email: account.Email, DisplayName: account.DisplayName}
	result, err := s.issue(id, profile)
	if err != nil {
		return nil, err
	}
	result.Source = SourceCreated
	s.emit(AuthEvent{Type: AuthSignedIn, Identity: id})
	return result, nil
}

func profileFromSignUp(uid string, req SignUpRequest) models.Profile {
	base := models.ProfileBase{
		UID:    uid,
		Email:  req.Email,
		Name:   req.Name,
		Phone:  req.Phone,
		Status: "active",
	}
	if req.UserType == models.RolePractitioner {
		return &models.PractitionerProfile{
			ProfileBase:    base,
			Specialization: req.Specialization,
			Experience:     req.Experience,
			Qualifications: req.Qualifications,
			Expertise:      req.Expertise,
		}
	}
	return &models.PatientProfile{
		ProfileBase:      base,
		Age:              req.Age,
		Gender:           req.Gender,
		Dosha:            req.Dosha,
		MedicalHistory:   req.MedicalHistory,
		CurrentCondition: req.CurrentCondition,
	}
}

// Login checks the password and resolves the user's profile.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	id := Identity{UID: account.UID, Email: account.Email, DisplayName: account.DisplayName}
	resolved, err := s.users.ResolveProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.issue(id, resolved.Profile)
	if err != nil {
		return nil, err
	}
	result.Source = resolved.Source

	s.log.Info("user logged in", "uid", id.UID, "profileSource", resolved.Source)
	s.emit(AuthEvent{Type: AuthSignedIn, Identity: id})
	return result, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	s.revoke(claims)
	s.emit(AuthEvent{Type: AuthSignedOut, Identity: identityFromClaims(claims)})
	return nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RequestPasswordReset emails a one-time reset link. Unknown addresses get
// the same silent success so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accountByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrInvalidCredentials) {
		s.log.Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	s.resets.Set(token, account.UID, s.cfg.ResetTokenTTL)

	link := s.cfg.ResetURL
	if link != "" {
		link += "?token=" + url.QueryEscape(token)
	} else {
		link = token
	}
	if err := s.mailer.SendPasswordReset(ctx, account.Email, link); err != nil {
		s.resets.Delete(token)
		s.log.Error(err, "failed to send reset email", "uid", account.UID)
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	v, ok := s.resets.Get(token)
	if !ok {
		return ErrInvalidResetToken
	}
	uid := v.(string)

	hash, err := utils.HashPassword(newPassword, s.cfg.PasswordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.store.Update(ctx, models.CollectionAccounts, uid, models.Fields{"passwordHash": hash, "updatedAt": s.now()})
	if errors.Is(err, store.ErrNotFound) {
		s.resets.Delete(token)
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.resets.Delete(token)
	s.log.Info("password reset", "uid", uid)
	return nil
}

// DeleteAccount soft-deletes the user and removes the credential. The token
// must come from a login inside the recent-login window.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *utils.Claims) error {
	if claims.IssuedAt == nil || s.now().Sub(claims.IssuedAt.Time) > s.cfg.RecentLoginWindow {
		return ErrRequiresRecentLogin
	}

	if err := s.users.DeactivateUser(ctx, claims.UserID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionAccounts, claims.UserID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Error(err, "failed to delete credential", "uid", claims.UserID)
		return fmt.Errorf("delete account: %w", err)
	}
	s.revoke(claims)

	s.log.Info("account deleted", "uid", claims.UserID)
	s.emit(AuthEvent{Type: AuthDeleted, Identity: identityFromClaims(claims)})
	return nil
}

// OnAuthStateChanged registers fn for auth events and returns a func that
// unregisters it.
func (s *AuthService) OnAuthStateChanged(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) emit(ev AuthEvent) {
	s.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *AuthService) issue(id Identity, profile models.Profile) (*AuthResult, error) {
	token, claims, err := s.tokens.GenerateJWT(id.UID, string(profile.Role()), id.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  id,
		Profile:   profile,
		Claims:    claims,
	}, nil
}

func (s *AuthService) revoke(claims *utils.Claims) {
	ttl := 24 * time.Hour
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl > 0 {
		s.revoked.Set(claims.ID, struct{}{}, ttl)
	}
}

func (s *AuthService) accountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var accounts []models.Account
	if err := s.store.Find(ctx, models.CollectionAccounts, store.NewQuery(store.Where("email", email)).Take(1), &accounts); err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrInvalidCredentials
	}
	return &accounts[0], nil
}

func identityFromClaims(c *utils.Claims) Identity {
	return Identity{UID: c.UserID, Email: c.Email}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
