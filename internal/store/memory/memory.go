// Package memory provides an in-memory session store for local development
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"example.com/schedule/internal/domain"
)

// Store keeps sessions and profiles in process memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	profiles map[string]domain.Profile
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]domain.Session),
		profiles: make(map[string]domain.Profile),
	}
}

// AddProfile seeds a profile, keyed by its owner identifier.
func (s *Store) AddProfile(profile domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	s.profiles[profile.OwnerID] = profile
}

// ListSessions returns all sessions owned by ownerID ordered by start time.
func (s *Store) ListSessions(ctx context.Context, ownerID string) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Session, 0)
	for _, session := range s.sessions {
		if session.OwnerID == ownerID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

// CreateSession assigns an identifier and stores the session.
func (s *Store) CreateSession(ctx context.Context, fields domain.SessionFields) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := domain.Session{
		ID:          uuid.NewString(),
		OwnerID:     fields.OwnerID,
		Title:       fields.Title,
		StartDate:   fields.StartDate,
		EndDate:     fields.EndDate,
		NumPullUp:   fields.NumPullUp,
		NumDip:      fields.NumDip,
		NumPushUp:   fields.NumPushUp,
		Description: fields.Description,
		Strength:    fields.Strength,
	}
	s.sessions[session.ID] = session
	return &session, nil
}

// UpdateSession applies the non-nil patch fields to the stored session.
func (s *Store) UpdateSession(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, &domain.StoreError{Message: "Training could not be updated", Err: domain.ErrSessionNotFound}
	}

	if patch.Title != nil {
		session.Title = *patch.Title
	}
	if patch.StartDate != nil {
		session.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		session.EndDate = *patch.EndDate
	}
	if patch.NumPullUp != nil {
		session.NumPullUp = *patch.NumPullUp
	}
	if patch.NumDip != nil {
		session.NumDip = *patch.NumDip
	}
	if patch.NumPushUp != nil {
		session.NumPushUp = *patch.NumPushUp
	}
	if patch.Description != nil {
		session.Description = *patch.Description
	}
	if patch.Strength != nil {
		session.Strength = *patch.Strength
	}

	s.sessions[id] = session
	return &session, nil
}

// DeleteSession removes the session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return &domain.StoreError{Message: "Training could not be deleted", Err: domain.ErrSessionNotFound}
	}
	delete(s.sessions, id)
	return nil
}

// GetSession returns a single session by identifier.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, &domain.StoreError{Message: "Training could not be loaded", Err: domain.ErrSessionNotFound}
	}
	return &session, nil
}

// GetProfile returns the profile for the owner.
func (s *Store) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[ownerID]
	if !ok {
		return nil, &domain.StoreError{Message: "Exerciser could not be loaded", Err: domain.ErrProfileNotFound}
	}
	return &profile, nil
}

// ListProfiles returns every profile except the excluded owner's, ordered by
// nickname for stable output.
func (s *Store) ListProfiles(ctx context.Context, excludingOwnerID string) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Profile, 0, len(s.profiles))
	for ownerID, profile := range s.profiles {
		if ownerID == excludingOwnerID {
			continue
		}
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NickName < out[j].NickName })
	return out, nil
}
