package database

import (
	"time"
)

type Article struct {
	ID             string
	Title          string
	Description    string
	URL            string
	PublishedAt    time.Time
	SourceName     string
	Categories     []string
	RelevanceScore float64 // static per-article quality value in [0,1]
	Latitude       *float64
	Longitude      *float64
	Summary        string // generated, backfilled asynchronously
	CreatedAt      time.Time
}

// HasCoordinates reports whether the article carries a usable location.
func (a *Article) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

type Interaction struct {
	ID         string
	ArticleID  string
	EventType  string // view, click, share
	Weight     float64
	Latitude   *float64
	Longitude  *float64
	OccurredAt time.Time
}
