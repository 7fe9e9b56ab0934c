package news

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/intent"
	"github.com/veslov/newspulse/app/ranking"
	"github.com/veslov/newspulse/app/trending"
)

// eventWeights assigns the canonical weight per event type, matching the
// calibration of simulated events.
var eventWeights = map[string]float64{
	"view":  1.0,
	"click": 1.5,
	"share": 2.5,
}

// Service is the retrieval core: it routes free-form queries, ranks
// candidate articles per mode, and serves the cached trending feed.
type Service struct {
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
	router          *intent.Router
	engine          *trending.Engine
	cache           *trending.Cache
}

func NewService(articleRepo database.ArticleRepository, interactionRepo database.InteractionRepository,
	router *intent.Router, engine *trending.Engine, cache *trending.Cache) *Service {
	return &Service{
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
		router:          router,
		engine:          engine,
		cache:           cache,
	}
}

// Resolve runs the full router-to-ranker pipeline for a free-form query.
// An empty result is a valid outcome, not an error.
func (s *Service) Resolve(ctx context.Context, query string, location *geo.Location, limit int) ([]database.Article, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	routed := s.router.Route(ctx, query, location)

	if routed.Mode == intent.ModeTrending {
		scored, err := s.Trending(ctx, routed.Location, limit)
		if err != nil {
			return nil, err
		}
		return stripScores(scored), nil
	}

	return s.rank(routed.Mode, paramsFromRouted(routed), limit)
}

// RankByMode invokes a single retrieval mode directly, bypassing the router.
func (s *Service) RankByMode(ctx context.Context, mode intent.Mode, params ranking.Params, limit int) ([]database.Article, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := validateParams(mode, params); err != nil {
		return nil, err
	}

	if mode == intent.ModeTrending {
		scored, err := s.Trending(ctx, params.Location, limit)
		if err != nil {
			return nil, err
		}
		return stripScores(scored), nil
	}

	return s.rank(mode, params, limit)
}

// Trending serves the popularity feed through the geo cache.
func (s *Service) Trending(_ context.Context, location *geo.Location, limit int) ([]trending.ScoredArticle, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	key := s.cache.Key(string(intent.ModeTrending), location, limit, 0)
	return s.cache.GetOrCompute(key, func() ([]trending.ScoredArticle, error) {
		return s.engine.Compute(location, limit)
	})
}

// RecordInteraction appends an interaction event and invalidates the
// trending cache, since any bucket may now be stale.
func (s *Service) RecordInteraction(_ context.Context, articleID, eventType string, location *geo.Location) error {
	if articleID == "" {
		return fmt.Errorf("%w: article id is required", ErrInvalidParameter)
	}
	weight, ok := eventWeights[eventType]
	if !ok {
		return fmt.Errorf("%w: unknown event type '%s'", ErrInvalidParameter, eventType)
	}
	if err := validateLocation(location); err != nil {
		return err
	}

	article, err := s.articleRepo.GetArticle(articleID)
	if err != nil {
		return fmt.Errorf("failed to look up article '%s': %w", articleID, err)
	}
	if article == nil {
		return fmt.Errorf("%w: unknown article '%s'", ErrInvalidParameter, articleID)
	}

	interaction := database.Interaction{
		ID:         uuid.New().String(),
		ArticleID:  articleID,
		EventType:  eventType,
		Weight:     weight,
		OccurredAt: time.Now().UTC(),
	}
	if location != nil {
		interaction.Latitude = &location.Lat
		interaction.Longitude = &location.Lon
	}

	if err := s.interactionRepo.InsertInteraction(interaction); err != nil {
		return err
	}

	s.cache.Invalidate()
	return nil
}

func (s *Service) rank(mode intent.Mode, params ranking.Params, limit int) ([]database.Article, error) {
	candidates, err := s.candidates(mode)
	if err != nil {
		return nil, err
	}
	return ranking.Rank(mode, params, candidates, limit), nil
}

// candidates narrows the store read where the mode allows it; the ranking
// engine remains responsible for filtering and ordering.
func (s *Service) candidates(mode intent.Mode) ([]database.Article, error) {
	if mode == intent.ModeNearby {
		return s.articleRepo.ListWithCoordinates()
	}
	return s.articleRepo.ListArticles()
}

func paramsFromRouted(routed *intent.RoutedQuery) ranking.Params {
	return ranking.Params{
		Category:  routed.Category,
		Source:    routed.Source,
		Threshold: routed.Threshold,
		Keywords:  routed.Keywords,
		Location:  routed.Location,
		RadiusKm:  routed.RadiusKm,
	}
}

func stripScores(scored []trending.ScoredArticle) []database.Article {
	articles := make([]database.Article, len(scored))
	for i, entry := range scored {
		articles[i] = entry.Article
	}
	return articles
}

func validateLimit(limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidParameter, limit)
	}
	return nil
}

func validateLocation(location *geo.Location) error {
	if location != nil && !location.Valid() {
		return fmt.Errorf("%w: coordinates out of range (%s)", ErrInvalidParameter, location)
	}
	return nil
}

func validateParams(mode intent.Mode, params ranking.Params) error {
	switch mode {
	case intent.ModeCategory:
		if params.Category == "" {
			return fmt.Errorf("%w: category is required", ErrInvalidParameter)
		}
	case intent.ModeSource:
		if params.Source == "" {
			return fmt.Errorf("%w: source is required", ErrInvalidParameter)
		}
	case intent.ModeScore:
		if params.Threshold < 0 || params.Threshold > 1 {
			return fmt.Errorf("%w: threshold must be within [0,1], got %f", ErrInvalidParameter, params.Threshold)
		}
	case intent.ModeNearby:
		if params.Location == nil {
			return fmt.Errorf("%w: nearby mode requires a location", ErrInvalidParameter)
		}
		if err := validateLocation(params.Location); err != nil {
			return err
		}
		if params.RadiusKm <= 0 {
			return fmt.Errorf("%w: radius must be positive, got %f", ErrInvalidParameter, params.RadiusKm)
		}
	case intent.ModeTrending:
		if err := validateLocation(params.Location); err != nil {
			return err
		}
	}
	return nil
}
