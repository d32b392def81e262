package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/repositories"
	"github.com/smartshelf/shelfweb/pkg/session"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// ErrNoToken is returned when the backend accepted a login but sent no token.
var ErrNoToken = errors.New("services: login response carried no token")

// AuthService talks to the public auth endpoints and drives the session
// lifecycle. It never sends a bearer token.
type AuthService struct {
	repo     *repositories.AuthRepository
	sessions *session.Manager
}

// Login authenticates c, stores the credentials on sess and returns the
// role's landing page.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, c models.Credentials) (string, error) {
	if err := validate.Check(c); err != nil {
		return "", err
	}

	res, err := s.repo.Login(ctx, c)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", ErrNoToken
	}

	role := models.ParseRole(res.Role)
	if err := s.sessions.Login(ctx, sess, res.Token, string(role)); err != nil {
		return "", fmt.Errorf("auth: %w", err)
	}
	return role.Home(), nil
}

// Logout clears sess. It is safe on an anonymous session.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Logout(ctx, sess)
}

// Register creates an account and returns the backend's confirmation.
func (s *AuthService) Register(ctx context.Context, r models.Registration) (string, error) {
	if err := validate.Check(r); err != nil {
		return "", err
	}
	return s.repo.Register(ctx, r)
}

// ResetPassword changes a password given the old one.
func (s *AuthService) ResetPassword(ctx context.Context, p models.PasswordReset) (string, error) {
	if err := validate.Check(p); err != nil {
		return "", err
	}
	return s.repo.ResetPassword(ctx, p)
}

// AssignableRoles lists the roles an administrator can grant.
func (s *AuthService) AssignableRoles() []models.Role {
	return append([]models.Role(nil), models.Roles...)
}
