package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/veslov/newspulse/app/database"
)

// articlePayload mirrors the data file schema. Coordinates are optional;
// articles without them are skipped by proximity retrieval but still
// participate in every other mode.
type articlePayload struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	PublishedAt    string   `json:"publication_date"`
	SourceName     string   `json:"source_name"`
	Categories     []string `json:"category"`
	RelevanceScore float64  `json:"relevance_score"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

type Loader struct {
	articleRepo database.ArticleRepository
}

func NewLoader(articleRepo database.ArticleRepository) *Loader {
	return &Loader{articleRepo: articleRepo}
}

// Load reads the article data file and upserts every record. Loading is
// idempotent, so restarting the process does not duplicate articles.
func (l *Loader) Load(filePath string) (int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read data file '%s': %w", filePath, err)
	}

	var payloads []articlePayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return 0, fmt.Errorf("failed to parse data file '%s': %w", filePath, err)
	}

	loaded := 0
	for _, payload := range payloads {
		article, err := payload.toArticle()
		if err != nil {
			slog.Warn("Skipping invalid article record", "id", payload.ID, "error", err)
			continue
		}

		if err := l.articleRepo.UpsertArticle(*article); err != nil {
			return loaded, fmt.Errorf("failed to store article '%s': %w", article.ID, err)
		}
		loaded++
	}

	slog.Debug("Article data file loaded", "file", filePath, "count", loaded)
	return loaded, nil
}

func (p articlePayload) toArticle() (*database.Article, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("missing article id")
	}
	if p.Title == "" {
		return nil, fmt.Errorf("missing title")
	}

	publishedAt, err := parseTimestamp(p.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid publication date '%s': %w", p.PublishedAt, err)
	}

	if (p.Latitude == nil) != (p.Longitude == nil) {
		return nil, fmt.Errorf("partial coordinates")
	}

	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}

	return &database.Article{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		URL:            p.URL,
		PublishedAt:    publishedAt,
		SourceName:     p.SourceName,
		Categories:     categories,
		RelevanceScore: p.RelevanceScore,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
