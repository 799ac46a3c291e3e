package viewmodel

import (
	"context"
	"errors"

	"github.com/harentsoaR/ayursutra-api/internal/models"
	"github.com/harentsoaR/ayursutra-api/internal/services"
	"golang.org/x/sync/errgroup"
)

// Dashboard is everything the landing page shows for one user.
type Dashboard struct {
	Profile       models.Profile           `json:"profile"`
	Upcoming      []models.Session         `json:"upcomingSessions"`
	Notifications []models.Notification    `json:"notifications"`
	UnreadCount   int                      `json:"unreadCount"`
	Progress      *models.Progress         `json:"progress,omitempty"`
	Patients      []*models.PatientProfile `json:"patients,omitempty"`
}

// LoadDashboard fetches the pieces concurrently. A missing progress row is
// not an error. Practitioners also get their assigned patients.
func LoadDashboard(ctx context.Context, svc *services.Services, uid string, role models.Role) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := svc.Users.GetUserByRole(ctx, uid, role)
		d.Profile = p
		return err
	})
	g.Go(func() error {
		upcoming, err := svc.Sessions.GetUpcomingSessions(ctx, uid, role)
		d.Upcoming = upcoming
		return err
	})
	g.Go(func() error {
		list, err := svc.Notifications.GetUserNotifications(ctx, uid)
		d.Notifications = list
		d.UnreadCount = countUnread(list)
		return err
	})
	g.Go(func() error {
		p, err := svc.Progress.GetProgress(ctx, uid)
		if errors.Is(err, services.ErrProgressNotFound) {
			return nil
		}
		d.Progress = p
		return err
	})
	if role == models.RolePractitioner {
		g.Go(func() error {
			patients, err := svc.Practitioners.GetAssignedPatients(ctx, uid)
			d.Patients = patients
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
