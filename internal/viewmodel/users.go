package viewmodel

import (
	"context"
	"sync"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
)

// UserView is one user's profile.
type UserView struct {
	*Resource[models.Profile]
	users *services.UserService
	uid   string
}

func NewUserView(users *services.UserService, uid string) *UserView {
	v := &UserView{users: users, uid: uid}
	v.Resource = NewResource(func(ctx context.Context) (models.Profile, error) {
		if uid == "" {
			return nil, nil
		}
		return users.GetUser(ctx, uid)
	})
	return v
}

// Update writes the changes and reloads the profile.
func (v *UserView) Update(ctx context.Context, updates models.Fields) error {
	return v.Mutate(ctx, func(ctx context.Context) error {
		return v.users.UpdateUser(ctx, v.uid, updates)
	}, nil)
}

// DirectoryView lists every patient and practitioner.
type DirectoryView struct {
	Patients      *Resource[[]*models.PatientProfile]
	Practitioners *Resource[[]*models.PractitionerProfile]
}

func NewDirectoryView(users *services.UserService) *DirectoryView {
	return &DirectoryView{
		Patients:      NewResource(users.GetAllPatients),
		Practitioners: NewResource(users.GetAllPractitioners),
	}
}

func (v *DirectoryView) Refresh(ctx context.Context) error {
	if err := v.Patients.Refresh(ctx); err != nil {
		return err
	}
	return v.Practitioners.Refresh(ctx)
}

// AuthView tracks who is signed in. It follows the auth event stream, so a
// logout or account deletion through any path clears it.
type AuthView struct {
	auth *services.AuthService

	mu      sync.RWMutex
	current *services.AuthResult

	unsubscribe func()
}

func NewAuthView(auth *services.AuthService) *AuthView {
	v := &AuthView{auth: auth}
	v.unsubscribe = auth.OnAuthStateChanged(func(ev services.AuthEvent) {
		if ev.Type == services.AuthSignedIn {
			return
		}
		v.mu.Lock()
		if v.current != nil && v.current.Identity.UID == ev.Identity.UID {
			v.current = nil
		}
		v.mu.Unlock()
	})
	return v
}

// Current is the signed-in session, or nil.
func (v *AuthView) Current() *services.AuthResult {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

func (v *AuthView) SignUp(ctx context.Context, req services.SignUpRequest) error {
	res, err := v.auth.SignUp(ctx, req)
	if err != nil {
		return err
	}
	v.set(res)
	return nil
}

func (v *AuthView) Login(ctx context.Context, email, password string) error {
	res, err := v.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	v.set(res)
	return nil
}

func (v *AuthView) Logout(ctx context.Context) error {
	cur := v.Current()
	if cur == nil {
		return nil
	}
	return v.auth.Logout(ctx, cur.Claims)
}

func (v *AuthView) ResetPassword(ctx context.Context, email string) error {
	return v.auth.RequestPasswordReset(ctx, email)
}

func (v *AuthView) DeleteAccount(ctx context.Context) error {
	cur := v.Current()
	if cur == nil {
		return nil
	}
	return v.auth.DeleteAccount(ctx, cur.Claims)
}

// Close stops following auth events.
func (v *AuthView) Close() {
	v.unsubscribe()
}

func (v *AuthView) set(res *services.AuthResult) {
	v.mu.Lock()
	v.current = res
	v.mu.Unlock()
}
