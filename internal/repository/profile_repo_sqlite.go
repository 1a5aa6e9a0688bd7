package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

const sqliteCandidatesSchema = `
	CREATE TABLE IF NOT EXISTS candidates (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		email             TEXT NOT NULL UNIQUE,
		openness          REAL NOT NULL DEFAULT 0,
		conscientiousness REAL NOT NULL DEFAULT 0,
		extraversion      REAL NOT NULL DEFAULT 0,
		agreeableness     REAL NOT NULL DEFAULT 0,
		neuroticism       REAL NOT NULL DEFAULT 0,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL
	)
`

// SQLiteProfileRepository implementa ProfileRepository sobre SQLite (modo local).
// Los timestamps se guardan en milisegundos UTC.
type SQLiteProfileRepository struct {
	db *sql.DB
}

func NewSQLiteProfileRepository(db *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{db: db}
}

func (r *SQLiteProfileRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteCandidatesSchema)
	return err
}

func (r *SQLiteProfileRepository) Create(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, error) {
	const query = `
		INSERT INTO candidates (id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		toMillis(profile.CreatedAt),
		toMillis(profile.UpdatedAt),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return domain.PersonalityProfile{}, ErrDuplicateEmail
		}
		return domain.PersonalityProfile{}, err
	}
	return profile, nil
}

func (r *SQLiteProfileRepository) UpsertByEmail(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	const query = `
		INSERT INTO candidates (id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email)
		DO UPDATE SET
			name = excluded.name,
			openness = excluded.openness,
			conscientiousness = excluded.conscientiousness,
			extraversion = excluded.extraversion,
			agreeableness = excluded.agreeableness,
			neuroticism = excluded.neuroticism,
			updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	proposedID := profile.ID
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		toMillis(profile.CreatedAt),
		toMillis(profile.UpdatedAt),
	).Scan(&profile.ID, &createdAt)
	if err != nil {
		return domain.PersonalityProfile{}, false, err
	}
	profile.CreatedAt = fromMillis(createdAt)
	profile.UpdatedAt = fromMillis(toMillis(profile.UpdatedAt))
	return profile, profile.ID == proposedID, nil
}

func (r *SQLiteProfileRepository) GetByEmail(ctx context.Context, email string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at
		FROM candidates
		WHERE email = ?
	`
	p, err := scanSQLiteProfile(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PersonalityProfile{}, ErrProfileNotFound
	}
	return p, err
}

func (r *SQLiteProfileRepository) List(ctx context.Context) ([]domain.PersonalityProfile, error) {
	const query = `
		SELECT id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at
		FROM candidates
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.PersonalityProfile, 0)
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func scanSQLiteProfile(row rowScanner) (domain.PersonalityProfile, error) {
	var (
		p         domain.PersonalityProfile
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Openness,
		&p.Conscientiousness,
		&p.Extraversion,
		&p.Agreeableness,
		&p.Neuroticism,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
