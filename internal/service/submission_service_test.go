package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/config"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ProfileUpdated
}

func (p *recordingPublisher) Publish(event domain.ProfileUpdated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []domain.ProfileUpdated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ProfileUpdated(nil), p.events...)
}

type failingRepo struct {
	repository.ProfileRepository
	err error
}

func (r failingRepo) UpsertByEmail(context.Context, domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	return domain.PersonalityProfile{}, false, r.err
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) bool { return false }

var anaTraits = domain.TraitScores{Openness: 8, Conscientiousness: 6, Extraversion: 5, Agreeableness: 7, Neuroticism: 3}

func fixedScorer(traits domain.TraitScores) Scorer {
	return ScorerFunc(func(context.Context, string) (domain.TraitScores, error) {
		return traits, nil
	})
}

func TestSubmissionService_AnaExample(t *testing.T) {
	repo := repository.NewMemoryProfileRepository()
	pub := &recordingPublisher{}
	engine := NewAggregationEngine()
	svc := NewSubmissionService(zap.NewNop(), repo, fixedScorer(anaTraits), pub, WithProfileSinks(engine))

	profile, err := svc.Submit(context.Background(), domain.CandidateResponse{Name: " Ana ", Email: "Ana@X.com ", Response: "..."})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if profile.TraitScores != anaTraits || profile.Name != "Ana" || profile.Email != "ana@x.com" || profile.ID == "" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	stored, err := repo.GetByEmail(context.Background(), "ana@x.com")
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.TraitScores != anaTraits {
		t.Fatalf("expected stored traits %+v, got %+v", anaTraits, stored.TraitScores)
	}

	events := pub.Events()
	if len(events) != 1 || events[0].Profile.TraitScores != anaTraits || !events[0].Created {
		t.Fatalf("expected one created event with ana traits, got %+v", events)
	}

	snap := engine.Snapshot()
	if snap.SampleCount != 1 {
		t.Fatalf("expected sample_count=1, got %d", snap.SampleCount)
	}
	for trait, want := range anaTraits.AsMap() {
		if snap.TraitAverages[trait] != want {
			t.Fatalf("trait %s: expected %v, got %v", trait, want, snap.TraitAverages[trait])
		}
	}
}

func TestSubmissionService_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input domain.CandidateResponse
	}{
		{name: "empty name", input: domain.CandidateResponse{Name: "  ", Email: "a@x.com", Response: "r"}},
		{name: "empty email", input: domain.CandidateResponse{Name: "A", Email: "", Response: "r"}},
		{name: "empty response", input: domain.CandidateResponse{Name: "A", Email: "a@x.com", Response: "\n\t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := repository.NewMemoryProfileRepository()
			pub := &recordingPublisher{}
			scored := false
			scorer := ScorerFunc(func(context.Context, string) (domain.TraitScores, error) {
				scored = true
				return anaTraits, nil
			})
			svc := NewSubmissionService(zap.NewNop(), repo, scorer, pub)

			_, err := svc.Submit(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidSubmission) {
				t.Fatalf("expected ErrInvalidSubmission, got %v", err)
			}
			if scored {
				t.Fatalf("scorer must not run on invalid input")
			}
			all, _ := repo.List(context.Background())
			if len(all) != 0 || len(pub.Events()) != 0 {
				t.Fatalf("expected no write and no publish")
			}
		})
	}
}

func TestSubmissionService_ScorerFailureAborts(t *testing.T) {
	repo := repository.NewMemoryProfileRepository()
	pub := &recordingPublisher{}
	scorer := ScorerFunc(func(context.Context, string) (domain.TraitScores, error) {
		return domain.TraitScores{}, errors.New("llm down")
	})
	svc := NewSubmissionService(zap.NewNop(), repo, scorer, pub)

	_, err := svc.Submit(context.Background(), domain.CandidateResponse{Name: "A", Email: "a@x.com", Response: "r"})
	if !errors.Is(err, ErrScoringFailed) {
		t.Fatalf("expected ErrScoringFailed, got %v", err)
	}
	all, _ := repo.List(context.Background())
	if len(all) != 0 || len(pub.Events()) != 0 {
		t.Fatalf("expected no write and no publish")
	}
}

func TestSubmissionService_StoreFailureAborts(t *testing.T) {
	pub := &recordingPublisher{}
	engine := NewAggregationEngine()
	repo := failingRepo{ProfileRepository: repository.NewMemoryProfileRepository(), err: errors.New("disk full")}
	svc := NewSubmissionService(zap.NewNop(), repo, fixedScorer(anaTraits), pub, WithProfileSinks(engine))

	_, err := svc.Submit(context.Background(), domain.CandidateResponse{Name: "A", Email: "a@x.com", Response: "r"})
	if !errors.Is(err, ErrProfileWrite) {
		t.Fatalf("expected ErrProfileWrite, got %v", err)
	}
	if len(pub.Events()) != 0 || engine.Snapshot().SampleCount != 0 {
		t.Fatalf("expected no publish and untouched aggregates")
	}
}

func TestSubmissionService_CancelledBeforeWrite(t *testing.T) {
	repo := repository.NewMemoryProfileRepository()
	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	scorer := ScorerFunc(func(context.Context, string) (domain.TraitScores, error) {
		cancel()
		return anaTraits, nil
	})
	svc := NewSubmissionService(zap.NewNop(), repo, scorer, pub)

	_, err := svc.Submit(ctx, domain.CandidateResponse{Name: "A", Email: "a@x.com", Response: "r"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	all, _ := repo.List(context.Background())
	if len(all) != 0 || len(pub.Events()) != 0 {
		t.Fatalf("expected no write and no publish")
	}
}

func TestSubmissionService_DuplicatePolicies(t *testing.T) {
	ctx := context.Background()
	first := domain.CandidateResponse{Name: "Ana", Email: "ana@x.com", Response: "uno"}
	second := domain.CandidateResponse{Name: "Ana", Email: "ANA@x.com", Response: "dos"}

	t.Run("update keeps identity", func(t *testing.T) {
		repo := repository.NewMemoryProfileRepository()
		pub := &recordingPublisher{}
		engine := NewAggregationEngine()
		traits := anaTraits
		scorer := ScorerFunc(func(context.Context, string) (domain.TraitScores, error) { return traits, nil })
		svc := NewSubmissionService(zap.NewNop(), repo, scorer, pub, WithProfileSinks(engine))

		p1, err := svc.Submit(ctx, first)
		if err != nil {
			t.Fatalf("first submit: %v", err)
		}
		traits = domain.TraitScores{Openness: 2, Conscientiousness: 2, Extraversion: 2, Agreeableness: 2, Neuroticism: 2}
		p2, err := svc.Submit(ctx, second)
		if err != nil {
			t.Fatalf("second submit: %v", err)
		}
		if p1.ID != p2.ID {
			t.Fatalf("expected same id, got %s and %s", p1.ID, p2.ID)
		}
		events := pub.Events()
		if len(events) != 2 || events[1].Created {
			t.Fatalf("expected second event to be an update, got %+v", events)
		}
		snap := engine.Snapshot()
		if snap.SampleCount != 1 || snap.TraitAverages[domain.TraitOpenness] != 2 {
			t.Fatalf("expected replaced contribution, got %+v", snap)
		}
	})

	t.Run("reject", func(t *testing.T) {
		repo := repository.NewMemoryProfileRepository()
		pub := &recordingPublisher{}
		svc := NewSubmissionService(zap.NewNop(), repo, fixedScorer(anaTraits), pub, WithDuplicatePolicy(config.DuplicatePolicyReject))

		if _, err := svc.Submit(ctx, first); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		if _, err := svc.Submit(ctx, second); !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		if len(pub.Events()) != 1 {
			t.Fatalf("expected a single publish")
		}
	})
}

func TestSubmissionService_RateLimited(t *testing.T) {
	repo := repository.NewMemoryProfileRepository()
	pub := &recordingPublisher{}
	svc := NewSubmissionService(zap.NewNop(), repo, fixedScorer(anaTraits), pub, WithRateLimiter(denyAllLimiter{}))

	_, err := svc.Submit(context.Background(), domain.CandidateResponse{Name: "A", Email: "a@x.com", Response: "r"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(pub.Events()) != 0 {
		t.Fatalf("expected no publish")
	}
}

// gatedRepo pausa la escritura del candidato "first" hasta que se cierre release.
type gatedRepo struct {
	*repository.MemoryProfileRepository
	written chan struct{}
	release chan struct{}
}

func (r *gatedRepo) UpsertByEmail(ctx context.Context, profile domain.PersonalityProfile) (domain.PersonalityProfile, bool, error) {
	stored, created, err := r.MemoryProfileRepository.UpsertByEmail(ctx, profile)
	if profile.Name == "first" {
		close(r.written)
		<-r.release
	}
	return stored, created, err
}

func TestSubmissionService_ConcurrentSameEmailKeepsWriteOrder(t *testing.T) {
	ctx := context.Background()
	repo := &gatedRepo{
		MemoryProfileRepository: repository.NewMemoryProfileRepository(),
		written:                 make(chan struct{}),
		release:                 make(chan struct{}),
	}
	scorer := ScorerFunc(func(_ context.Context, text string) (domain.TraitScores, error) {
		if text == "first answer" {
			return domain.TraitScores{Openness: 10}, nil
		}
		return domain.TraitScores{Openness: 90}, nil
	})
	pub := &recordingPublisher{}
	engine := NewAggregationEngine()
	dashboard := NewDashboardViewModel(repo)
	svc := NewSubmissionService(zap.NewNop(), repo, scorer, pub, WithProfileSinks(engine, dashboard))

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, domain.CandidateResponse{Name: "first", Email: "ana@x.com", Response: "first answer"})
		firstDone <- err
	}()
	<-repo.written

	secondDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, domain.CandidateResponse{Name: "second", Email: "ana@x.com", Response: "second answer"})
		secondDone <- err
	}()

	select {
	case <-secondDone:
		t.Fatalf("second submission committed while the first was still pending")
	case <-time.After(50 * time.Millisecond):
	}
	close(repo.release)

	if err := <-firstDone; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("second submit: %v", err)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 || stored[0].Openness != 90 {
		t.Fatalf("expected single profile with openness 90, got %+v", stored)
	}
	if got, want := engine.Snapshot(), ComputeSnapshot(stored); !reflect.DeepEqual(got, want) {
		t.Fatalf("incremental %+v != from scratch %+v", got, want)
	}
	if rows := dashboard.View("", 0, 10).Rows; len(rows) != 1 || rows[0].Openness != 90 {
		t.Fatalf("expected dashboard row with openness 90, got %+v", rows)
	}

	events := pub.Events()
	if len(events) != 2 || events[0].Profile.Openness != 10 || events[1].Profile.Openness != 90 {
		t.Fatalf("expected events in write order, got %+v", events)
	}
}
