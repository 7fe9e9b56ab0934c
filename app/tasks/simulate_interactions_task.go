package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/veslov/newspulse/app/database"
)

const simulationSeed = 42

var simulatedEventTypes = []struct {
	name   string
	weight float64
}{
	{"view", 1.0},
	{"click", 1.5},
	{"share", 2.5},
}

// SimulateInteractionsTask seeds the interactions table with synthetic
// events so the trending feed has signal on a fresh database. The run is
// a no-op when real interactions already exist, and the fixed seed makes
// repeated bootstraps reproducible.
type SimulateInteractionsTask struct {
	Task
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
}

func NewSimulateInteractionsTask(articleRepo database.ArticleRepository, interactionRepo database.InteractionRepository) *SimulateInteractionsTask {
	return &SimulateInteractionsTask{
		Task:            NewTask(TaskTypeSimulateInteractions),
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
	}
}

func (t *SimulateInteractionsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	count, err := t.interactionRepo.GetInteractionCount()
	if err != nil {
		return fmt.Errorf("failed to check interaction count: %w", err)
	}
	if count > 0 {
		slog.Debug("Interactions already present, skipping simulation", "count", count)
		return nil
	}

	articles, err := t.articleRepo.ListArticles()
	if err != nil {
		return fmt.Errorf("failed to list articles for simulation: %w", err)
	}

	rng := rand.New(rand.NewSource(simulationSeed))
	now := time.Now().UTC()
	generated := 0

	for _, article := range articles {
		events := 5 + rng.Intn(16)
		for i := 0; i < events; i++ {
			event := simulatedEventTypes[rng.Intn(len(simulatedEventTypes))]
			jitter := time.Duration(rng.Intn(361)) * time.Minute

			interaction := database.Interaction{
				ID:         uuid.New().String(),
				ArticleID:  article.ID,
				EventType:  event.name,
				Weight:     event.weight,
				Latitude:   article.Latitude,
				Longitude:  article.Longitude,
				OccurredAt: now.Add(-jitter),
			}

			if err := t.interactionRepo.InsertInteraction(interaction); err != nil {
				slog.Error("Task failed", "type", "SimulateInteractions", "article", article.ID, "error", err)
				return fmt.Errorf("failed to store simulated interaction: %w", err)
			}
			generated++
		}
	}

	slog.Info("Task completed",
		"type", "SimulateInteractions",
		"articles", len(articles),
		"interactions", generated,
		"duration", t.GetDuration())

	return nil
}
