package database

import (
	"time"
)

type ArticleRepository interface {
	GetArticle(id string) (*Article, error)
	GetArticleCount() (int, error)
	ListArticles() ([]Article, error)
	ListWithCoordinates() ([]Article, error)
	ListMissingSummaries(limit int) ([]Article, error)

	UpsertArticle(article Article) error
	UpdateSummary(id string, summary string) error
}

type InteractionRepository interface {
	GetInteractionCount() (int, error)
	ListSince(since time.Time) ([]Interaction, error)

	InsertInteraction(interaction Interaction) error
}
