package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/config"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/llm"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/realtime"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/repository"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

// Scenario describe una respuesta cuyo rasgo dominante es evidente para un humano.
type Scenario struct {
	Name     string
	Response string
	Trait    string
	High     bool
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := zap.NewNop()
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger,
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithTimeout(cfg.LLMTimeout),
	)
	scorer := service.NewLLMScorer(llmClient, logger)

	repo := repository.NewMemoryProfileRepository()
	hub := realtime.NewHub(logger, 32)
	sub := hub.Subscribe()
	defer sub.Close()
	engine := service.NewAggregationEngine()
	submissions := service.NewSubmissionService(logger, repo, scorer, hub, service.WithProfileSinks(engine))

	scenarios := []Scenario{
		{
			Name:     "Curiosidad intelectual",
			Response: "I spend my weekends learning new languages, visiting art galleries and trying recipes from cultures I have never explored.",
			Trait:    domain.TraitOpenness,
			High:     true,
		},
		{
			Name:     "Planificacion estricta",
			Response: "I plan every week on Sunday, keep a detailed to-do list and never miss a deadline.",
			Trait:    domain.TraitConscientiousness,
			High:     true,
		},
		{
			Name:     "Introversion",
			Response: "Large parties drain me. I prefer a quiet evening alone with a book over meeting new people.",
			Trait:    domain.TraitExtraversion,
			High:     false,
		},
		{
			Name:     "Ansiedad",
			Response: "I worry constantly about small mistakes and often lie awake replaying conversations in my head.",
			Trait:    domain.TraitNeuroticism,
			High:     true,
		},
	}

	passed := 0
	total := len(scenarios) + 1

	for i, sc := range scenarios {
		fmt.Printf("=== Ejecutando: %s ===\n", sc.Name)

		runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		profile, err := submissions.Submit(runCtx, domain.CandidateResponse{
			Name:     sc.Name,
			Email:    fmt.Sprintf("scoring_check_%d@example.com", i),
			Response: sc.Response,
		})
		cancel()
		if err != nil {
			fmt.Printf("FAIL [%s] submit: %v\n\n", sc.Name, err)
			continue
		}

		select {
		case ev := <-sub.Events():
			if ev.Profile.ID != profile.ID {
				fmt.Printf("FAIL [%s] evento de otro perfil: %s\n\n", sc.Name, ev.Profile.ID)
				continue
			}
		case <-time.After(time.Second):
			fmt.Printf("FAIL [%s] no se publico el evento\n\n", sc.Name)
			continue
		}

		score, _ := profile.Get(sc.Trait)
		fmt.Printf("rasgos: %s\n", formatTraits(profile.TraitScores))
		ok := (sc.High && score > 50) || (!sc.High && score < 50)
		if ok {
			fmt.Printf("PASS [%s] %s=%.0f alto=%t\n\n", sc.Name, sc.Trait, score, sc.High)
			passed++
		} else {
			fmt.Printf("FAIL [%s] %s=%.0f alto=%t\n\n", sc.Name, sc.Trait, score, sc.High)
		}
	}

	stored, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("list profiles: %v", err)
	}
	if reflect.DeepEqual(engine.Snapshot(), service.ComputeSnapshot(stored)) {
		fmt.Println("PASS [agregados] incremental == recalculo completo")
		passed++
	} else {
		fmt.Printf("FAIL [agregados] incremental=%+v recalculo=%+v\n", engine.Snapshot(), service.ComputeSnapshot(stored))
	}

	fmt.Printf("Tests: %d/%d pasaron\n", passed, total)
	if passed != total {
		os.Exit(1)
	}
	os.Exit(0)
}

func formatTraits(t domain.TraitScores) string {
	parts := make([]string, 0, len(domain.TraitNames))
	for _, name := range domain.TraitNames {
		v, _ := t.Get(name)
		parts = append(parts, fmt.Sprintf("%s=%.0f", name, v))
	}
	return strings.Join(parts, " ")
}
