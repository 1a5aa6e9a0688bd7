package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/config"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/repository"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrDuplicateEmail    = errors.New("email already submitted")
	ErrRateLimited       = errors.New("rate limited")
	ErrScoringFailed     = errors.New("scoring failed")
	ErrProfileWrite      = errors.New("profile write failed")
)

// ProfileSink recibe cada perfil confirmado (motor de agregados, dashboard).
type ProfileSink interface {
	OnProfileUpdated(profile domain.PersonalityProfile)
}

// EventPublisher difunde eventos ProfileUpdated a los observadores conectados.
type EventPublisher interface {
	Publish(event domain.ProfileUpdated)
}

// SubmissionService valida, puntua, persiste y publica las respuestas de candidatos.
type SubmissionService struct {
	logger    *zap.Logger
	profiles  repository.ProfileRepository
	scorer    Scorer
	publisher EventPublisher
	limiter   SubmissionRateLimiter
	sinks     []ProfileSink
	policy    string
	now       func() time.Time

	// commitMu ordena escritura, sinks y publicacion: los observadores ven el orden del store.
	commitMu sync.Mutex
}

type SubmissionOption func(*SubmissionService)

func WithRateLimiter(limiter SubmissionRateLimiter) SubmissionOption {
	return func(s *SubmissionService) {
		s.limiter = limiter
	}
}

// WithDuplicatePolicy elige entre config.DuplicatePolicyUpdate y config.DuplicatePolicyReject.
func WithDuplicatePolicy(policy string) SubmissionOption {
	return func(s *SubmissionService) {
		s.policy = strings.ToLower(strings.TrimSpace(policy))
	}
}

// WithProfileSinks registra los consumidores que se actualizan antes de publicar.
func WithProfileSinks(sinks ...ProfileSink) SubmissionOption {
	return func(s *SubmissionService) {
		s.sinks = append(s.sinks, sinks...)
	}
}

func NewSubmissionService(logger *zap.Logger, profiles repository.ProfileRepository, scorer Scorer, publisher EventPublisher, opts ...SubmissionOption) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SubmissionService{
		logger:    logger,
		profiles:  profiles,
		scorer:    scorer,
		publisher: publisher,
		policy:    config.DuplicatePolicyUpdate,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit persiste un perfil completo y publica exactamente un evento, o no hace ninguna de las dos cosas.
func (s *SubmissionService) Submit(ctx context.Context, input domain.CandidateResponse) (domain.PersonalityProfile, error) {
	if s.profiles == nil || s.scorer == nil {
		return domain.PersonalityProfile{}, errors.New("submission service not configured")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	response := strings.TrimSpace(input.Response)
	switch {
	case name == "":
		return domain.PersonalityProfile{}, fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	case email == "":
		return domain.PersonalityProfile{}, fmt.Errorf("%w: email is required", ErrInvalidSubmission)
	case response == "":
		return domain.PersonalityProfile{}, fmt.Errorf("%w: response is required", ErrInvalidSubmission)
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, email) {
		return domain.PersonalityProfile{}, ErrRateLimited
	}

	if s.policy == config.DuplicatePolicyReject {
		if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
			return domain.PersonalityProfile{}, ErrDuplicateEmail
		} else if !errors.Is(err, repository.ErrProfileNotFound) {
			return domain.PersonalityProfile{}, fmt.Errorf("%w: %w", ErrProfileWrite, err)
		}
	}

	traits, err := s.scorer.Score(ctx, response)
	if err != nil {
		return domain.PersonalityProfile{}, fmt.Errorf("%w: %w", ErrScoringFailed, err)
	}

	now := s.now()
	profile := domain.PersonalityProfile{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		TraitScores: traits,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, created, err := s.commit(ctx, profile)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	s.logger.Info("profile stored",
		zap.String("profile_id", stored.ID),
		zap.Bool("created", created),
	)
	return stored, nil
}

func (s *SubmissionService) commit(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.PersonalityProfile{}, false, fmt.Errorf("%w: %w", ErrProfileWrite, err)
	}

	stored, created, err := s.write(ctx, profile)
	if err != nil {
		return domain.PersonalityProfile{}, false, err
	}

	for _, sink := range s.sinks {
		sink.OnProfileUpdated(stored)
	}
	if s.publisher != nil {
		s.publisher.Publish(domain.ProfileUpdated{
			Profile:   stored,
			Created:   created,
			Timestamp: profile.UpdatedAt,
		})
	}
	return stored, created, nil
}

func (s *SubmissionService) write(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	if s.policy == config.DuplicatePolicyReject {
		stored, err := s.profiles.Create(ctx, profile)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return domain.PersonalityProfile{}, false, ErrDuplicateEmail
			}
			return domain.PersonalityProfile{}, false, fmt.Errorf("%w: %w", ErrProfileWrite, err)
		}
		return stored, true, nil
	}

	stored, created, err := s.profiles.UpsertByEmail(ctx, profile)
	if err != nil {
		return domain.PersonalityProfile{}, false, fmt.Errorf("%w: %w", ErrProfileWrite, err)
	}
	return stored, created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
