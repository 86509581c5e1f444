// Package domain defines the training schedule types and the store contract.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a training session cannot be located.
	ErrSessionNotFound = errors.New("training not found")
	// ErrProfileNotFound is returned when an exerciser profile cannot be located.
	ErrProfileNotFound = errors.New("exerciser profile not found")
)

// StoreError wraps a failed store call. Message is the user-facing text; the
// underlying cause is preserved for errors.Is/As inspection.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Session is one scheduled training record. OwnerID is immutable after
// creation and StartDate always precedes EndDate.
type Session struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"userid"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	NumPullUp   int       `json:"numPullUp"`
	NumDip      int       `json:"numDip"`
	NumPushUp   int       `json:"numPushUp"`
	Description string    `json:"description"`
	Strength    string    `json:"trainingStrength"`
}

// SessionFields carries the payload for creating a session. The store assigns
// the identifier.
type SessionFields struct {
	OwnerID     string    `json:"userid"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	NumPullUp   int       `json:"numPullUp"`
	NumDip      int       `json:"numDip"`
	NumPushUp   int       `json:"numPushUp"`
	Description string    `json:"description"`
	Strength    string    `json:"trainingStrength"`
}

// Validate ensures the create payload is well formed.
func (f SessionFields) Validate() error {
	if f.OwnerID == "" {
		return errors.New("userid is required")
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return errors.New("startDate and endDate are required")
	}
	if !f.StartDate.Before(f.EndDate) {
		return errors.New("startDate must precede endDate")
	}
	return nil
}

// SessionPatch is a partial update; nil fields are left untouched. OwnerID is
// deliberately absent: ownership never changes after creation.
type SessionPatch struct {
	Title       *string    `json:"title,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	NumPullUp   *int       `json:"numPullUp,omitempty"`
	NumDip      *int       `json:"numDip,omitempty"`
	NumPushUp   *int       `json:"numPushUp,omitempty"`
	Description *string    `json:"description,omitempty"`
	Strength    *string    `json:"trainingStrength,omitempty"`
}

// Profile describes an exerciser. Avatar may be empty in the store; callers
// rendering profiles substitute the configured placeholder.
type Profile struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userid"`
	NickName  string    `json:"nickName"`
	BirthDate time.Time `json:"birthDate"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
}

// RoleAuthenticated marks a fully signed-in exerciser.
const RoleAuthenticated = "authenticated"

// Store is the narrow CRUD contract to the session store. Implementations do
// not retry and do not validate field shapes; every failure is a *StoreError.
type Store interface {
	ListSessions(ctx context.Context, ownerID string) ([]Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	CreateSession(ctx context.Context, fields SessionFields) (*Session, error)
	UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	GetProfile(ctx context.Context, ownerID string) (*Profile, error)
	ListProfiles(ctx context.Context, excludingOwnerID string) ([]Profile, error)
}
