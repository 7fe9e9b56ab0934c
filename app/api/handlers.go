package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veslov/newspulse/app/cfg"
	"github.com/veslov/newspulse/app/database"
	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/ingest"
	"github.com/veslov/newspulse/app/intent"
	"github.com/veslov/newspulse/app/news"
	"github.com/veslov/newspulse/app/ranking"
	"github.com/veslov/newspulse/app/summary"
	"github.com/veslov/newspulse/app/tasks"
	"github.com/veslov/newspulse/app/textsignal"
	"github.com/veslov/newspulse/app/trending"
)

const (
	defaultLimit    = 5
	maxLimit        = 20
	defaultRadiusKm = 10.0
)

func NewHandler(service *news.Service, articleRepo database.ArticleRepository,
	interactionRepo database.InteractionRepository, cache *trending.Cache,
	loader *ingest.Loader, summarizer summary.Summarizer,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		service:         service,
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
		cache:           cache,
		loader:          loader,
		summarizer:      summarizer,
		scheduler:       scheduler,
	}
}

func (h *Handler) GetNewsByCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category parameter"})
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Category: category}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeCategory, params, limit)
	h.respondArticles(c, articles, err, "No articles found for category")
}

func (h *Handler) GetNewsBySource(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source parameter"})
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Source: source}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeSource, params, limit)
	h.respondArticles(c, articles, err, "No articles found for source")
}

func (h *Handler) GetNewsByScore(c *gin.Context) {
	threshold := 0.7
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold parameter"})
			return
		}
		threshold = parsed
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Threshold: threshold}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeScore, params, limit)
	h.respondArticles(c, articles, err, "No articles found above threshold")
}

func (h *Handler) GetNewsBySearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Keywords: textsignal.Extract(query).Keywords}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeSearch, params, limit)
	h.respondArticles(c, articles, err, "No articles found for search query")
}

func (h *Handler) GetNewsNearby(c *gin.Context) {
	location, ok := parseLocation(c, true)
	if !ok {
		return
	}

	radiusKm := defaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius_km parameter"})
			return
		}
		radiusKm = parsed
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Location: location, RadiusKm: radiusKm}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeNearby, params, limit)
	h.respondArticles(c, articles, err, "No nearby articles found")
}

func (h *Handler) GetNewsTrending(c *gin.Context) {
	location, ok := parseLocation(c, false)
	if !ok {
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	params := ranking.Params{Location: location}
	articles, err := h.service.RankByMode(c.Request.Context(), intent.ModeTrending, params, limit)
	h.respondArticles(c, articles, err, "No trending articles found")
}

func (h *Handler) ResolveQuery(c *gin.Context) {
	var payload queryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	limit := payload.MaxResults
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be between 1 and 20"})
		return
	}

	location, ok := locationFromPair(c, payload.Latitude, payload.Longitude)
	if !ok {
		return
	}

	articles, err := h.service.Resolve(c.Request.Context(), payload.Query, location, limit)
	h.respondArticles(c, articles, err, "No articles matched the query")
}

func (h *Handler) RecordInteraction(c *gin.Context) {
	var payload interactionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	location, ok := locationFromPair(c, payload.Latitude, payload.Longitude)
	if !ok {
		return
	}

	err := h.service.RecordInteraction(c.Request.Context(), payload.ArticleID, payload.EventType, location)
	if err != nil {
		if errors.Is(err, news.ErrInvalidParameter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Failed to record interaction", "article", payload.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record interaction"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"trending_cache": map[string]interface{}{
			"entries":  h.cache.Len(),
			"capacity": h.cache.Capacity(),
		},
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		stats["articles"] = articleCount
	}
	if interactionCount, err := h.interactionRepo.GetInteractionCount(); err == nil {
		stats["interactions"] = interactionCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIReloadData(c *gin.Context) {
	loaded, err := h.loader.Load(cfg.Get().DataFile)
	if err != nil {
		slog.Error("Failed to reload data file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload data file",
			"details": err.Error(),
		})
		return
	}

	h.cache.Invalidate()

	summarizeTask := tasks.NewSummarizeArticlesTask(h.articleRepo, h.summarizer)
	if err := h.scheduler.EnqueueTask(summarizeTask); err != nil {
		slog.Error("Error enqueueing summarize task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue summarize task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"loaded":  loaded,
		"tasks": []gin.H{
			{
				"id":   summarizeTask.ID,
				"type": summarizeTask.Type,
			},
		},
	})
}

func (h *Handler) APICacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries":  h.cache.Len(),
		"capacity": h.cache.Capacity(),
	})
}

// respondArticles maps service results onto the wire: parameter problems are
// client errors, an empty result is a 404, anything else is a 500.
func (h *Handler) respondArticles(c *gin.Context, articles []database.Article, err error, emptyMessage string) {
	if err != nil {
		if errors.Is(err, news.ErrInvalidParameter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Retrieval failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Retrieval failed"})
		return
	}

	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": emptyMessage})
		return
	}

	c.JSON(http.StatusOK, toArticleResponses(articles))
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 20"})
		return 0, false
	}
	return limit, true
}

// parseLocation reads the lat/lon query parameter pair. When required is
// false an absent pair yields a nil location; a half-specified pair is
// always a client error.
func parseLocation(c *gin.Context, required bool) (*geo.Location, bool) {
	rawLat := c.Query("lat")
	rawLon := c.Query("lon")

	if rawLat == "" && rawLon == "" {
		if required {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing lat and lon parameters"})
			return nil, false
		}
		return nil, true
	}
	if rawLat == "" || rawLon == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both lat and lon must be provided"})
		return nil, false
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat parameter"})
		return nil, false
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lon parameter"})
		return nil, false
	}

	return &geo.Location{Lat: lat, Lon: lon}, true
}

func locationFromPair(c *gin.Context, lat, lon *float64) (*geo.Location, bool) {
	if lat == nil && lon == nil {
		return nil, true
	}
	if lat == nil || lon == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both latitude and longitude must be provided"})
		return nil, false
	}
	return &geo.Location{Lat: *lat, Lon: *lon}, true
}
