package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/intent"
)

const (
	// epsilon guards float comparisons so tie ordering stays deterministic.
	epsilon = 1e-6

	// Search mode blends static relevance with query-text match.
	relevanceWeight = 0.6
	textMatchWeight = 0.4

	// Above this candidate count, search mode drops no-match, below-median
	// candidates to bound output size.
	searchPrefilterSize = 50
)

// Params carries the mode-specific parameters for a ranking pass.
type Params struct {
	Category  string
	Source    string
	Threshold float64
	Keywords  []string
	Location  *geo.Location
	RadiusKm  float64
}

// Rank filters, scores and orders candidates for the given mode. Output is
// deduplicated by article id and capped at limit. It never fails: unusable
// input degrades to a shorter (possibly empty) result.
func Rank(mode intent.Mode, params Params, candidates []database.Article, limit int) []database.Article {
	if limit < 1 || len(candidates) == 0 {
		return nil
	}

	candidates = dedupe(candidates)

	var ranked []database.Article
	switch mode {
	case intent.ModeCategory:
		ranked = rankByCategory(params.Category, candidates)
	case intent.ModeSource:
		ranked = rankBySource(params.Source, candidates)
	case intent.ModeScore:
		ranked = rankByScore(params.Threshold, candidates)
	case intent.ModeSearch:
		ranked = rankBySearch(params.Keywords, candidates)
	case intent.ModeNearby:
		ranked = rankByNearby(params.Location, params.RadiusKm, candidates)
	default:
		ranked = rankBySearch(params.Keywords, candidates)
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rankByCategory(category string, candidates []database.Article) []database.Article {
	matched := make([]database.Article, 0, len(candidates))
	for _, article := range candidates {
		if hasCategory(article, category) {
			matched = append(matched, article)
		}
	}
	sortByRecency(matched)
	return matched
}

func rankBySource(source string, candidates []database.Article) []database.Article {
	matched := make([]database.Article, 0, len(candidates))
	for _, article := range candidates {
		if strings.EqualFold(article.SourceName, source) {
			matched = append(matched, article)
		}
	}
	sortByRecency(matched)
	return matched
}

func rankByScore(threshold float64, candidates []database.Article) []database.Article {
	matched := make([]database.Article, 0, len(candidates))
	for _, article := range candidates {
		if article.RelevanceScore >= threshold-epsilon {
			matched = append(matched, article)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !almostEqual(matched[i].RelevanceScore, matched[j].RelevanceScore) {
			return matched[i].RelevanceScore > matched[j].RelevanceScore
		}
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	return matched
}

type searchCandidate struct {
	article  database.Article
	matches  int
	combined float64
}

func rankBySearch(keywords []string, candidates []database.Article) []database.Article {
	scored := make([]searchCandidate, 0, len(candidates))
	for _, article := range candidates {
		matches := keywordMatches(article, keywords)
		ratio := 0.0
		if len(keywords) > 0 {
			ratio = float64(matches) / float64(len(keywords))
		}
		scored = append(scored, searchCandidate{
			article:  article,
			matches:  matches,
			combined: relevanceWeight*article.RelevanceScore + textMatchWeight*ratio,
		})
	}

	if len(scored) > searchPrefilterSize {
		scored = prefilter(scored)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if !almostEqual(scored[i].combined, scored[j].combined) {
			return scored[i].combined > scored[j].combined
		}
		if !almostEqual(scored[i].article.RelevanceScore, scored[j].article.RelevanceScore) {
			return scored[i].article.RelevanceScore > scored[j].article.RelevanceScore
		}
		return scored[i].article.ID < scored[j].article.ID
	})

	result := make([]database.Article, len(scored))
	for i, candidate := range scored {
		result[i] = candidate.article
	}
	return result
}

// prefilter drops candidates with no keyword match and below-median relevance.
// The candidate with the highest combined score is always retained.
func prefilter(scored []searchCandidate) []searchCandidate {
	best := 0
	for i := range scored {
		if scored[i].combined > scored[best].combined+epsilon {
			best = i
		}
	}
	median := medianRelevance(scored)

	kept := make([]searchCandidate, 0, len(scored))
	for i, candidate := range scored {
		if i != best && candidate.matches == 0 && candidate.article.RelevanceScore < median-epsilon {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

func medianRelevance(scored []searchCandidate) float64 {
	scores := make([]float64, len(scored))
	for i, candidate := range scored {
		scores[i] = candidate.article.RelevanceScore
	}
	sort.Float64s(scores)

	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		return (scores[mid-1] + scores[mid]) / 2
	}
	return scores[mid]
}

type nearbyCandidate struct {
	article  database.Article
	distance float64
}

func rankByNearby(location *geo.Location, radiusKm float64, candidates []database.Article) []database.Article {
	if location == nil || radiusKm <= 0 {
		return nil
	}

	within := make([]nearbyCandidate, 0, len(candidates))
	for _, article := range candidates {
		if !article.HasCoordinates() {
			continue
		}
		distance := geo.Distance(*location, geo.Location{Lat: *article.Latitude, Lon: *article.Longitude})
		if distance <= radiusKm+epsilon {
			within = append(within, nearbyCandidate{article: article, distance: distance})
		}
	}

	sort.SliceStable(within, func(i, j int) bool {
		if !almostEqual(within[i].distance, within[j].distance) {
			return within[i].distance < within[j].distance
		}
		if !almostEqual(within[i].article.RelevanceScore, within[j].article.RelevanceScore) {
			return within[i].article.RelevanceScore > within[j].article.RelevanceScore
		}
		return within[i].article.ID < within[j].article.ID
	})

	result := make([]database.Article, len(within))
	for i, candidate := range within {
		result[i] = candidate.article
	}
	return result
}

func sortByRecency(articles []database.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].ID < articles[j].ID
	})
}

func hasCategory(article database.Article, category string) bool {
	for _, label := range article.Categories {
		if strings.EqualFold(label, category) {
			return true
		}
	}
	return false
}

func keywordMatches(article database.Article, keywords []string) int {
	haystack := strings.ToLower(article.Title + " " + article.Description)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			matches++
		}
	}
	return matches
}

func dedupe(candidates []database.Article) []database.Article {
	seen := make(map[string]bool, len(candidates))
	unique := make([]database.Article, 0, len(candidates))
	for _, article := range candidates {
		if seen[article.ID] {
			continue
		}
		seen[article.ID] = true
		unique = append(unique, article)
	}
	return unique
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}
