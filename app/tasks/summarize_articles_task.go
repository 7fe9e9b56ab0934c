package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/summary"
)

const summarizeBatchSize = 20

// SummarizeArticlesTask backfills summaries for articles that do not have
// one yet. It processes a bounded batch per run; the scheduler re-enqueues
// it on every tick, so the backlog drains over time.
type SummarizeArticlesTask struct {
	Task
	articleRepo database.ArticleRepository
	summarizer  summary.Summarizer
}

func NewSummarizeArticlesTask(articleRepo database.ArticleRepository, summarizer summary.Summarizer) *SummarizeArticlesTask {
	return &SummarizeArticlesTask{
		Task:        NewTask(TaskTypeSummarizeArticles),
		articleRepo: articleRepo,
		summarizer:  summarizer,
	}
}

func (t *SummarizeArticlesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	articles, err := t.articleRepo.ListMissingSummaries(summarizeBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list articles missing summaries: %w", err)
	}
	if len(articles) == 0 {
		slog.Debug("No articles missing summaries")
		return nil
	}

	updated := 0
	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text, err := t.summarizer.Summarize(ctx, article.Title, article.Description)
		if err != nil {
			slog.Warn("Failed to summarize article", "article", article.ID, "error", err)
			continue
		}

		if err := t.articleRepo.UpdateSummary(article.ID, text); err != nil {
			slog.Error("Task failed", "type", "SummarizeArticles", "article", article.ID, "error", err)
			return fmt.Errorf("failed to store summary for article '%s': %w", article.ID, err)
		}
		updated++
	}

	slog.Info("Task completed",
		"type", "SummarizeArticles",
		"updated", updated,
		"duration", t.GetDuration())

	return nil
}
