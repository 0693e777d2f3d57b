package app

import (
	"context"
	"fmt"
	"strings"

	"projectflow_reminder/internal/domain/reminder"
)

// Application-level errors for session commands
var ErrNotAuthorized = fmt.Errorf("performing user is not authorized to control reminders")
var ErrUserIDRequired = fmt.Errorf("user id is required")

// Loop is the polling loop driven by the session.
type Loop interface {
	Start(userID string)
	Stop()
	ActiveUser() string
}

// PermissionRequester re-requests presentation permission on user action.
type PermissionRequester interface {
	Permission() reminder.Permission
	RequestPermission(ctx context.Context) (reminder.Permission, error)
}

// SessionStatus summarizes the engine state for one user.
type SessionStatus struct {
	ActiveUser string
	Permission reminder.Permission
	Reminded   int
}

// SessionService maps login, logout and reminder actions to the engine.
type SessionService struct {
	loop            Loop
	cache           *RemindedCache
	permissions     PermissionRequester
	adminTelegramID int64
}

func NewSessionService(loop Loop, cache *RemindedCache, permissions PermissionRequester, adminID int64) *SessionService {
	return &SessionService{
		loop:            loop,
		cache:           cache,
		permissions:     permissions,
		adminTelegramID: adminID,
	}
}

// Login starts reminders for userID, replacing any running session.
func (s *SessionService) Login(ctx context.Context, performingID int64, userID string) error {
	if performingID != s.adminTelegramID {
		return ErrNotAuthorized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	s.loop.Start(userID)
	return nil
}

// Logout stops reminders. The reminded set is kept.
func (s *SessionService) Logout(ctx context.Context, performingID int64) error {
	if performingID != s.adminTelegramID {
		return ErrNotAuthorized
	}
	s.loop.Stop()
	return nil
}

// ResetReminders forgets every reminded identifier so reminders may fire again.
func (s *SessionService) ResetReminders(ctx context.Context, performingID int64) error {
	if performingID != s.adminTelegramID {
		return ErrNotAuthorized
	}
	if err := s.cache.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset reminder cache: %w", err)
	}
	return nil
}

func (s *SessionService) EnableNotifications(ctx context.Context, performingID int64) (reminder.Permission, error) {
	if performingID != s.adminTelegramID {
		return "", ErrNotAuthorized
	}
	p, err := s.permissions.RequestPermission(ctx)
	if err != nil {
		return p, fmt.Errorf("failed to request notification permission: %w", err)
	}
	return p, nil
}

func (s *SessionService) Status(ctx context.Context, performingID int64) (*SessionStatus, error) {
	if performingID != s.adminTelegramID {
		return nil, ErrNotAuthorized
	}
	return &SessionStatus{
		ActiveUser: s.loop.ActiveUser(),
		Permission: s.permissions.Permission(),
		Reminded:   s.cache.Len(),
	}, nil
}
