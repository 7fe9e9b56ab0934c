package trending

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/geo"
)

const (
	epsilon = 1e-6

	// Events farther than this from the requested location are excluded
	// from that location's aggregation.
	defaultEventRadiusKm = 50.0
)

// eventWeights is the fixed per-type weight table; stored event weights take
// precedence when present so replayed datasets keep their calibration.
var eventWeights = map[string]float64{
	"view":  1.0,
	"click": 1.5,
	"share": 2.5,
}

// ScoredArticle pairs an article with its normalized popularity score.
type ScoredArticle struct {
	Article database.Article
	Score   float64
}

// Options tune the aggregation. Zero values fall back to defaults.
type Options struct {
	Window        time.Duration
	HalfLife      time.Duration
	EventRadiusKm float64
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 24 * time.Hour
	}
	if o.HalfLife <= 0 {
		o.HalfLife = 6 * time.Hour
	}
	if o.EventRadiusKm <= 0 {
		o.EventRadiusKm = defaultEventRadiusKm
	}
	return o
}

// Engine aggregates interaction events into per-article popularity scores.
// Computation is read-only over its inputs and safe for concurrent use.
type Engine struct {
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
	opts            Options
}

func NewEngine(articleRepo database.ArticleRepository, interactionRepo database.InteractionRepository, opts Options) *Engine {
	return &Engine{
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
		opts:            opts.withDefaults(),
	}
}

// Compute returns up to limit articles ordered by decayed, location-filtered
// popularity. Scores are normalized into [0,1] against the maximum in the
// result set; with no qualifying events every score is 0 and ordering falls
// back to publication recency.
func (e *Engine) Compute(location *geo.Location, limit int) ([]ScoredArticle, error) {
	if limit < 1 {
		return nil, nil
	}

	now := time.Now().UTC()
	events, err := e.interactionRepo.ListSince(now.Add(-e.opts.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction events: %w", err)
	}

	raw := make(map[string]float64)
	for _, event := range events {
		if location != nil && !e.eventWithinRadius(event, *location) {
			continue
		}

		weight := event.Weight
		if weight <= 0 {
			weight = eventWeights[event.EventType]
		}

		ageHours := now.Sub(event.OccurredAt.UTC()).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		raw[event.ArticleID] += weight * math.Exp(-ageHours/e.opts.HalfLife.Hours())
	}

	articles, err := e.articleRepo.ListArticles()
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	maxScore := 0.0
	for _, score := range raw {
		if score > maxScore {
			maxScore = score
		}
	}

	scored := make([]ScoredArticle, 0, len(articles))
	for _, article := range articles {
		score := 0.0
		if maxScore > 0 {
			score = raw[article.ID] / maxScore
		}
		scored = append(scored, ScoredArticle{Article: article, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if math.Abs(scored[i].Score-scored[j].Score) >= epsilon {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Article.PublishedAt.Equal(scored[j].Article.PublishedAt) {
			return scored[i].Article.PublishedAt.After(scored[j].Article.PublishedAt)
		}
		return scored[i].Article.ID < scored[j].Article.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// eventWithinRadius keeps only events that carry coordinates inside the
// aggregation radius; location-less events never count toward a localized
// feed.
func (e *Engine) eventWithinRadius(event database.Interaction, location geo.Location) bool {
	if event.Latitude == nil || event.Longitude == nil {
		return false
	}
	distance := geo.Distance(location, geo.Location{Lat: *event.Latitude, Lon: *event.Longitude})
	return distance <= e.opts.EventRadiusKm+epsilon
}
