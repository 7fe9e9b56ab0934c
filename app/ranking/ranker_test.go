package ranking

import (
	"fmt"
	"testing"
	"time"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/intent"
)

func ptr(f float64) *float64 { return &f }

func article(id string, relevance float64, published time.Time) database.Article {
	return database.Article{
		ID:             id,
		Title:          "Article " + id,
		Description:    "Description " + id,
		URL:            "https://example.com/" + id,
		PublishedAt:    published,
		SourceName:     "Example Wire",
		RelevanceScore: relevance,
	}
}

func TestRank_ScoreThresholdScenario(t *testing.T) {
	candidates := []database.Article{
		article("1", 0.9, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		article("2", 0.5, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
	}

	result := Rank(intent.ModeScore, Params{Threshold: 0.6}, candidates, 5)

	if len(result) != 1 {
		t.Fatalf("Expected exactly one result, got %d", len(result))
	}
	if result[0].ID != "1" {
		t.Errorf("Expected article '1', got '%s'", result[0].ID)
	}
}

func TestRank_RespectsLimit(t *testing.T) {
	var candidates []database.Article
	for i := 0; i < 20; i++ {
		candidates = append(candidates, article(fmt.Sprintf("%02d", i), 0.5, time.Now()))
	}

	result := Rank(intent.ModeScore, Params{Threshold: 0.0}, candidates, 7)

	if len(result) != 7 {
		t.Errorf("Expected 7 results, got %d", len(result))
	}
}

func TestRank_DeduplicatesByID(t *testing.T) {
	a := article("dup", 0.8, time.Now())
	candidates := []database.Article{a, a, a}

	result := Rank(intent.ModeScore, Params{Threshold: 0.0}, candidates, 10)

	if len(result) != 1 {
		t.Errorf("Expected duplicates collapsed to one result, got %d", len(result))
	}
}

func TestRank_InvalidLimitReturnsEmpty(t *testing.T) {
	candidates := []database.Article{article("1", 0.9, time.Now())}

	if result := Rank(intent.ModeScore, Params{}, candidates, 0); result != nil {
		t.Errorf("Expected nil result for limit 0, got %v", result)
	}
}

func TestRank_CategoryFilterAndOrder(t *testing.T) {
	older := article("a", 0.5, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	older.Categories = []string{"Technology"}
	newer := article("b", 0.3, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.Categories = []string{"technology", "Business"}
	unrelated := article("c", 0.9, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	unrelated.Categories = []string{"World"}

	result := Rank(intent.ModeCategory, Params{Category: "Technology"}, []database.Article{older, newer, unrelated}, 10)

	if len(result) != 2 {
		t.Fatalf("Expected 2 matching articles, got %d", len(result))
	}
	// Publication timestamp descending
	if result[0].ID != "b" || result[1].ID != "a" {
		t.Errorf("Expected order [b a], got [%s %s]", result[0].ID, result[1].ID)
	}
}

func TestRank_CategoryTieBreaksByID(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := article("x", 0.5, ts)
	first.Categories = []string{"World"}
	second := article("m", 0.5, ts)
	second.Categories = []string{"World"}

	result := Rank(intent.ModeCategory, Params{Category: "World"}, []database.Article{first, second}, 10)

	if result[0].ID != "m" || result[1].ID != "x" {
		t.Errorf("Expected identifier-ascending tie-break [m x], got [%s %s]", result[0].ID, result[1].ID)
	}
}

func TestRank_SourceCaseInsensitive(t *testing.T) {
	match := article("1", 0.5, time.Now())
	match.SourceName = "Reuters"
	miss := article("2", 0.5, time.Now())
	miss.SourceName = "BBC News"

	result := Rank(intent.ModeSource, Params{Source: "reuters"}, []database.Article{match, miss}, 10)

	if len(result) != 1 || result[0].ID != "1" {
		t.Errorf("Expected only the Reuters article, got %v", result)
	}
}

func TestRank_ScoreOrderingAdjacentPairs(t *testing.T) {
	candidates := []database.Article{
		article("1", 0.6, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		article("2", 0.9, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		article("3", 0.6, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		article("4", 0.75, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)),
	}

	result := Rank(intent.ModeScore, Params{Threshold: 0.5}, candidates, 10)

	for i := 1; i < len(result); i++ {
		prev, curr := result[i-1], result[i]
		if prev.RelevanceScore < curr.RelevanceScore-epsilon {
			t.Errorf("Relevance not descending at %d: %f then %f", i, prev.RelevanceScore, curr.RelevanceScore)
		}
		if almostEqual(prev.RelevanceScore, curr.RelevanceScore) && prev.PublishedAt.Before(curr.PublishedAt) {
			t.Errorf("Tie at %d not broken by publication timestamp descending", i)
		}
	}
}

func TestRank_SearchBlendsRelevanceAndTextMatch(t *testing.T) {
	strongText := article("1", 0.2, time.Now())
	strongText.Title = "Climate summit reaches historic agreement"
	strongRelevance := article("2", 0.9, time.Now())
	strongRelevance.Title = "Stock markets rally"

	result := Rank(intent.ModeSearch, Params{Keywords: []string{"climate", "summit"}}, []database.Article{strongText, strongRelevance}, 10)

	// 0.6*0.2 + 0.4*1.0 = 0.52 vs 0.6*0.9 + 0.4*0.0 = 0.54
	if result[0].ID != "2" {
		t.Errorf("Expected combined score to favor article 2, got %s first", result[0].ID)
	}

	strongText.RelevanceScore = 0.3
	// 0.6*0.3 + 0.4*1.0 = 0.58 > 0.54
	result = Rank(intent.ModeSearch, Params{Keywords: []string{"climate", "summit"}}, []database.Article{strongText, strongRelevance}, 10)
	if result[0].ID != "1" {
		t.Errorf("Expected combined score to favor article 1 after relevance bump, got %s first", result[0].ID)
	}
}

func TestRank_SearchEmptyKeywordsRanksByRelevance(t *testing.T) {
	candidates := []database.Article{
		article("1", 0.3, time.Now()),
		article("2", 0.9, time.Now()),
		article("3", 0.6, time.Now()),
	}

	result := Rank(intent.ModeSearch, Params{}, candidates, 10)

	if result[0].ID != "2" || result[1].ID != "3" || result[2].ID != "1" {
		t.Errorf("Expected relevance-only ordering [2 3 1], got [%s %s %s]", result[0].ID, result[1].ID, result[2].ID)
	}
}

func TestRank_SearchPrefilterKeepsTopCandidate(t *testing.T) {
	// Large candidate set of high-relevance keyword misses, plus one
	// low-relevance article that is the single best combined score through
	// a full keyword match. The prefilter must never drop it.
	var candidates []database.Article
	for i := 0; i < searchPrefilterSize+10; i++ {
		a := article(fmt.Sprintf("filler-%03d", i), 0.4, time.Now())
		a.Title = "Unrelated story"
		a.Description = "Nothing to see"
		candidates = append(candidates, a)
	}
	best := article("best", 0.35, time.Now())
	best.Title = "Fusion energy milestone announced"
	candidates = append(candidates, best)

	result := Rank(intent.ModeSearch, Params{Keywords: []string{"fusion", "energy", "milestone"}}, candidates, 5)

	if len(result) == 0 || result[0].ID != "best" {
		t.Fatalf("Expected 'best' to survive the prefilter and rank first, got %v", result)
	}
}

func TestRank_NearbyOrderingAndRadius(t *testing.T) {
	center := geo.Location{Lat: 37.4419, Lon: -122.1430} // Palo Alto

	near := article("near", 0.5, time.Now())
	near.Latitude, near.Longitude = ptr(37.4419), ptr(-122.16)
	mid := article("mid", 0.5, time.Now())
	mid.Latitude, mid.Longitude = ptr(37.48), ptr(-122.16)
	far := article("far", 0.5, time.Now())
	far.Latitude, far.Longitude = ptr(37.7749), ptr(-122.4194) // ~44 km away
	noCoords := article("nowhere", 0.9, time.Now())

	candidates := []database.Article{far, noCoords, mid, near}
	result := Rank(intent.ModeNearby, Params{Location: &center, RadiusKm: 10}, candidates, 10)

	if len(result) != 2 {
		t.Fatalf("Expected 2 articles within radius, got %d", len(result))
	}
	// Distance ascending
	prev := geo.Distance(center, geo.Location{Lat: *result[0].Latitude, Lon: *result[0].Longitude})
	for i := 1; i < len(result); i++ {
		curr := geo.Distance(center, geo.Location{Lat: *result[i].Latitude, Lon: *result[i].Longitude})
		if curr < prev-epsilon {
			t.Errorf("Distances not non-decreasing at %d: %f then %f", i, prev, curr)
		}
		prev = curr
	}
	for _, a := range result {
		if a.ID == "nowhere" {
			t.Error("Article without coordinates must be excluded from nearby mode")
		}
		if a.ID == "far" {
			t.Error("Article beyond radius must be excluded")
		}
	}
}

func TestRank_NearbyWithoutLocationReturnsEmpty(t *testing.T) {
	candidates := []database.Article{article("1", 0.9, time.Now())}

	if result := Rank(intent.ModeNearby, Params{RadiusKm: 10}, candidates, 5); len(result) != 0 {
		t.Errorf("Expected empty result without a location, got %v", result)
	}
}
