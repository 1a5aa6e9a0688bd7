package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

// ProfileLister es el subconjunto del store que necesitan los bootstraps.
type ProfileLister interface {
	List(ctx context.Context) ([]domain.PersonalityProfile, error)
}

// traitScale es la precision fija de las sumas: milesimas de punto.
const traitScale = 1000

// traitSums guarda una suma por rasgo, en el orden de domain.TraitNames, en punto fijo.
type traitSums [5]int64

func toTraitSums(t domain.TraitScores) traitSums {
	var out traitSums
	for i, name := range domain.TraitNames {
		v, _ := t.Get(name)
		out[i] = int64(math.Round(v * traitScale))
	}
	return out
}

func (s traitSums) add(o traitSums) traitSums {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

func (s traitSums) sub(o traitSums) traitSums {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

// AggregationEngine mantiene sumas por rasgo y el conteo de perfiles.
// Guarda el aporte de cada perfil por id: una actualizacion reemplaza su aporte anterior.
// Las sumas se guardan en punto fijo.
type AggregationEngine struct {
	mu            sync.RWMutex
	sums          traitSums
	contributions map[string]traitSums
	cached        *domain.AggregateSnapshot
}

func NewAggregationEngine() *AggregationEngine {
	return &AggregationEngine{contributions: make(map[string]traitSums)}
}

func (e *AggregationEngine) OnProfileUpdated(profile domain.PersonalityProfile) {
	contribution := toTraitSums(profile.TraitScores)

	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.contributions[profile.ID]; ok {
		e.sums = e.sums.sub(prev)
	}
	e.sums = e.sums.add(contribution)
	e.contributions[profile.ID] = contribution
	e.cached = nil
}

// Snapshot devuelve los promedios actuales; se cachea hasta el proximo evento.
func (e *AggregationEngine) Snapshot() domain.AggregateSnapshot {
	e.mu.RLock()
	if e.cached != nil {
		snap := copySnapshot(*e.cached)
		e.mu.RUnlock()
		return snap
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cached == nil {
		snap := buildSnapshot(e.sums, len(e.contributions))
		e.cached = &snap
	}
	return copySnapshot(*e.cached)
}

// Rebuild descarta el estado incremental y lo recalcula desde la lista completa.
func (e *AggregationEngine) Rebuild(profiles []domain.PersonalityProfile) {
	contributions, sums := sumLatest(profiles)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sums = sums
	e.contributions = contributions
	e.cached = nil
}

// Initialize reconstruye el motor a partir de un escaneo completo del store.
func (e *AggregationEngine) Initialize(ctx context.Context, lister ProfileLister) error {
	profiles, err := lister.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	e.Rebuild(profiles)
	return nil
}

// ComputeSnapshot recalcula el agregado desde cero. Si un id se repite cuenta la ultima version.
func ComputeSnapshot(profiles []domain.PersonalityProfile) domain.AggregateSnapshot {
	latest, sums := sumLatest(profiles)
	return buildSnapshot(sums, len(latest))
}

// sumLatest se queda con la ultima version de cada id y suma en el orden de la lista.
func sumLatest(profiles []domain.PersonalityProfile) (map[string]traitSums, traitSums) {
	latest := make(map[string]traitSums, len(profiles))
	order := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := latest[p.ID]; !ok {
			order = append(order, p.ID)
		}
		latest[p.ID] = toTraitSums(p.TraitScores)
	}
	var sums traitSums
	for _, id := range order {
		sums = sums.add(latest[id])
	}
	return latest, sums
}

func buildSnapshot(sums traitSums, count int) domain.AggregateSnapshot {
	averages := make(map[string]float64, len(domain.TraitNames))
	for i, name := range domain.TraitNames {
		if count == 0 {
			averages[name] = 0
			continue
		}
		averages[name] = roundTo2(float64(sums[i]) / float64(traitScale*count))
	}
	return domain.AggregateSnapshot{TraitAverages: averages, SampleCount: count}
}

func copySnapshot(s domain.AggregateSnapshot) domain.AggregateSnapshot {
	averages := make(map[string]float64, len(s.TraitAverages))
	for k, v := range s.TraitAverages {
		averages[k] = v
	}
	return domain.AggregateSnapshot{TraitAverages: averages, SampleCount: s.SampleCount}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
