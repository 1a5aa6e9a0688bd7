package repository

import (
	"context"
	"sync"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

// MemoryProfileRepository guarda perfiles en memoria; util para tests y STORE_DRIVER=memory.
type MemoryProfileRepository struct {
	mu      sync.RWMutex
	order   []string
	byEmail map[string]domain.PersonalityProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		byEmail: make(map[string]domain.PersonalityProfile),
	}
}

// EnsureSchema no hace nada; existe para cumplir el mismo contrato que los stores SQL.
func (r *MemoryProfileRepository) EnsureSchema(context.Context) error {
	return nil
}

func (r *MemoryProfileRepository) Create(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.PersonalityProfile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[profile.Email]; ok {
		return domain.PersonalityProfile{}, ErrDuplicateEmail
	}
	r.byEmail[profile.Email] = profile
	r.order = append(r.order, profile.Email)
	return profile, nil
}

func (r *MemoryProfileRepository) UpsertByEmail(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PersonalityProfile{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byEmail[profile.Email]
	if !ok {
		r.byEmail[profile.Email] = profile
		r.order = append(r.order, profile.Email)
		return profile, true, nil
	}
	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	r.byEmail[profile.Email] = profile
	return profile, false, nil
}

func (r *MemoryProfileRepository) GetByEmail(ctx context.Context, email string) (domain.PersonalityProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.PersonalityProfile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byEmail[email]
	if !ok {
		return domain.PersonalityProfile{}, ErrProfileNotFound
	}
	return p, nil
}

func (r *MemoryProfileRepository) List(ctx context.Context) ([]domain.PersonalityProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PersonalityProfile, 0, len(r.order))
	for _, email := range r.order {
		out = append(out, r.byEmail[email])
	}
	return out, nil
}
