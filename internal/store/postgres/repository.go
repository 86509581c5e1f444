// Package postgres provides the pgx-backed session store.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/schedule/internal/domain"
)

const sessionColumns = `training_id, user_id, title, start_date, end_date, num_pull_up, num_dip, num_push_up, description, training_strength`

// Repository provides Postgres-backed persistence for trainings and
// exerciser profiles. It performs no retries; every failure surfaces as a
// *domain.StoreError for the caller to handle.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSessions returns every training owned by ownerID ordered by start time.
func (r *Repository) ListSessions(ctx context.Context, ownerID string) ([]domain.Session, error) {
	const query = `SELECT ` + sessionColumns + `
        FROM trainings WHERE user_id=$1 ORDER BY start_date, training_id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, storeError("Trainings could not be loaded", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, storeError("Trainings could not be loaded", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Trainings could not be loaded", err)
	}
	return sessions, nil
}

// GetSession returns a single training by identifier.
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM trainings WHERE training_id=$1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeError("Training could not be loaded", domain.ErrSessionNotFound)
		}
		return nil, storeError("Training could not be loaded", err)
	}
	return &session, nil
}

// CreateSession assigns an identifier and inserts the training.
func (r *Repository) CreateSession(ctx context.Context, fields domain.SessionFields) (*domain.Session, error) {
	const stmt = `INSERT INTO trainings (` + sessionColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING ` + sessionColumns

	session, err := scanSession(r.pool.QueryRow(ctx, stmt,
		uuid.NewString(),
		fields.OwnerID,
		fields.Title,
		fields.StartDate,
		fields.EndDate,
		fields.NumPullUp,
		fields.NumDip,
		fields.NumPushUp,
		fields.Description,
		fields.Strength,
	))
	if err != nil {
		return nil, storeError("Training could not be created", err)
	}
	return &session, nil
}

// UpdateSession applies the non-nil patch fields. Absent fields keep their
// stored value; ownership is never touched.
func (r *Repository) UpdateSession(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	const stmt = `UPDATE trainings SET
        title=COALESCE($2, title),
        start_date=COALESCE($3, start_date),
        end_date=COALESCE($4, end_date),
        num_pull_up=COALESCE($5, num_pull_up),
        num_dip=COALESCE($6, num_dip),
        num_push_up=COALESCE($7, num_push_up),
        description=COALESCE($8, description),
        training_strength=COALESCE($9, training_strength)
        WHERE training_id=$1
        RETURNING ` + sessionColumns

	session, err := scanSession(r.pool.QueryRow(ctx, stmt,
		id,
		patch.Title,
		patch.StartDate,
		patch.EndDate,
		patch.NumPullUp,
		patch.NumDip,
		patch.NumPushUp,
		patch.Description,
		patch.Strength,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeError("Training could not be updated", domain.ErrSessionNotFound)
		}
		return nil, storeError("Training could not be updated", err)
	}
	return &session, nil
}

// DeleteSession removes the training.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	const stmt = `DELETE FROM trainings WHERE training_id=$1`

	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		return storeError("Training could not be deleted", err)
	}
	if tag.RowsAffected() == 0 {
		return storeError("Training could not be deleted", domain.ErrSessionNotFound)
	}
	return nil
}

// GetProfile returns the exerciser profile for the owner.
func (r *Repository) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	const query = `SELECT id, user_id, nick_name, birth_date, COALESCE(avatar, ''), role
        FROM users WHERE user_id=$1`

	var profile domain.Profile
	row := r.pool.QueryRow(ctx, query, ownerID)
	if err := row.Scan(&profile.ID, &profile.OwnerID, &profile.NickName, &profile.BirthDate, &profile.Avatar, &profile.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeError("Exerciser could not be loaded", domain.ErrProfileNotFound)
		}
		return nil, storeError("Exerciser could not be loaded", err)
	}
	return &profile, nil
}

// ListProfiles returns every profile except the excluded owner's.
func (r *Repository) ListProfiles(ctx context.Context, excludingOwnerID string) ([]domain.Profile, error) {
	const query = `SELECT id, user_id, nick_name, birth_date, COALESCE(avatar, ''), role
        FROM users WHERE user_id<>$1 ORDER BY nick_name`

	rows, err := r.pool.Query(ctx, query, excludingOwnerID)
	if err != nil {
		return nil, storeError("Exercisers could not be loaded", err)
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(&profile.ID, &profile.OwnerID, &profile.NickName, &profile.BirthDate, &profile.Avatar, &profile.Role); err != nil {
			return nil, storeError("Exercisers could not be loaded", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Exercisers could not be loaded", err)
	}
	return profiles, nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.OwnerID,
		&session.Title,
		&session.StartDate,
		&session.EndDate,
		&session.NumPullUp,
		&session.NumDip,
		&session.NumPushUp,
		&session.Description,
		&session.Strength,
	)
	return session, err
}

func storeError(message string, err error) *domain.StoreError {
	return &domain.StoreError{Message: message, Err: err}
}
