package api

import (
	"time"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/ingest"
	"github.com/veslov/newspulse/app/news"
	"github.com/veslov/newspulse/app/summary"
	"github.com/veslov/newspulse/app/tasks"
	"github.com/veslov/newspulse/app/trending"
)

type Handler struct {
	service         *news.Service
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
	cache           *trending.Cache
	loader          *ingest.Loader
	summarizer      summary.Summarizer
	scheduler       tasks.TaskSchedulerInterface
}

// articleResponse is the wire representation of an article.
type articleResponse struct {
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
	Summary        string   `json:"summary,omitempty"`
}

type queryRequest struct {
	Query      string   `json:"query" binding:"required"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	MaxResults int      `json:"max_results"`
}

type interactionRequest struct {
	ArticleID string   `json:"article_id" binding:"required"`
	EventType string   `json:"event_type" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func toArticleResponse(article database.Article) articleResponse {
	categories := article.Categories
	if categories == nil {
		categories = []string{}
	}

	return articleResponse{
		ID:             article.ID,
		Title:          article.Title,
		Description:    article.Description,
		URL:            article.URL,
		PublishedAt:    article.PublishedAt.UTC().Format(time.RFC3339),
		SourceName:     article.SourceName,
		Categories:     categories,
		RelevanceScore: article.RelevanceScore,
		Latitude:       article.Latitude,
		Longitude:      article.Longitude,
		Summary:        article.Summary,
	}
}

func toArticleResponses(articles []database.Article) []articleResponse {
	responses := make([]articleResponse, len(articles))
	for i, article := range articles {
		responses[i] = toArticleResponse(article)
	}
	return responses
}
