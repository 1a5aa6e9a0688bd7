package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateEmail  = errors.New("email already exists")
)

// ProfileRepository define el contrato de persistencia de perfiles de candidatos.
// Cada escritura es atomica: los lectores nunca ven un perfil a medio escribir.
type ProfileRepository interface {
	// Create inserta un perfil nuevo y falla con ErrDuplicateEmail si el email ya existe.
	Create(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, error)
	// UpsertByEmail inserta o reemplaza los rasgos del perfil con ese email.
	// Conserva id y created_at del registro existente; created indica si fue alta.
	UpsertByEmail(ctx context.Context, profile domain.PersonalityProfile) (stored domain.PersonalityProfile, created bool, err error)
	GetByEmail(ctx context.Context, email string) (domain.PersonalityProfile, error)
	// List devuelve todos los perfiles en orden de alta.
	List(ctx context.Context) ([]domain.PersonalityProfile, error)
}

const pgCandidatesSchema = `
	CREATE TABLE IF NOT EXISTS candidates (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		email             TEXT NOT NULL UNIQUE,
		openness          DOUBLE PRECISION NOT NULL DEFAULT 0,
		conscientiousness DOUBLE PRECISION NOT NULL DEFAULT 0,
		extraversion      DOUBLE PRECISION NOT NULL DEFAULT 0,
		agreeableness     DOUBLE PRECISION NOT NULL DEFAULT 0,
		neuroticism       DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)
`

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// EnsureSchema crea la tabla candidates si no existe.
func (r *PgProfileRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, pgCandidatesSchema)
	return err
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, error) {
	const query = `
		INSERT INTO candidates (id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.PersonalityProfile{}, ErrDuplicateEmail
		}
		return domain.PersonalityProfile{}, err
	}
	return profile, nil
}

func (r *PgProfileRepository) UpsertByEmail(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	const query = `
		INSERT INTO candidates (id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			openness = EXCLUDED.openness,
			conscientiousness = EXCLUDED.conscientiousness,
			extraversion = EXCLUDED.extraversion,
			agreeableness = EXCLUDED.agreeableness,
			neuroticism = EXCLUDED.neuroticism,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	proposedID := profile.ID
	err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Openness,
		profile.Conscientiousness,
		profile.Extraversion,
		profile.Agreeableness,
		profile.Neuroticism,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return domain.PersonalityProfile{}, false, err
	}
	return profile, profile.ID == proposedID, nil
}

func (r *PgProfileRepository) GetByEmail(ctx context.Context, email string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at
		FROM candidates
		WHERE email = $1
	`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityProfile{}, ErrProfileNotFound
	}
	return p, err
}

func (r *PgProfileRepository) List(ctx context.Context) ([]domain.PersonalityProfile, error) {
	const query = `
		SELECT id, name, email, openness, conscientiousness, extraversion, agreeableness, neuroticism, created_at, updated_at
		FROM candidates
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.PersonalityProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
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

// rowScanner cubre pgx.Row, pgx.Rows, *sql.Row y *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domain.PersonalityProfile, error) {
	var p domain.PersonalityProfile
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Openness,
		&p.Conscientiousness,
		&p.Extraversion,
		&p.Agreeableness,
		&p.Neuroticism,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
