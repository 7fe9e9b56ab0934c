package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

var _ ArticleRepository = (*articleRepository)(nil)

type articleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleColumns = `id, title, COALESCE(description, ''), url, published_at,
       source_name, COALESCE(categories, '[]'), relevance_score,
       latitude, longitude, COALESCE(summary, ''), created_at`

func (r *articleRepository) GetArticle(id string) (*Article, error) {
	row := r.db.QueryRow(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE id = ?
	`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

func (r *articleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *articleRepository) ListArticles() ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT ` + articleColumns + `
		FROM articles
		ORDER BY published_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *articleRepository) ListWithCoordinates() ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT ` + articleColumns + `
		FROM articles
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY published_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles with coordinates: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *articleRepository) ListMissingSummaries(limit int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE summary IS NULL OR summary = ''
		ORDER BY published_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles missing summaries: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *articleRepository) UpsertArticle(article Article) error {
	categories, err := json.Marshal(article.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO articles (
			id, title, description, url, published_at, source_name,
			categories, relevance_score, latitude, longitude, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			url = excluded.url,
			published_at = excluded.published_at,
			source_name = excluded.source_name,
			categories = excluded.categories,
			relevance_score = excluded.relevance_score,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, article.ID, article.Title, article.Description, article.URL,
		article.PublishedAt.UTC(), article.SourceName, string(categories),
		article.RelevanceScore, article.Latitude, article.Longitude,
		nullIfEmpty(article.Summary))

	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

func (r *articleRepository) UpdateSummary(id string, summary string) error {
	result, err := r.db.Exec(`
		UPDATE articles
		SET summary = ?
		WHERE id = ?
	`, summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check summary update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("article '%s' not found", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	var categories string

	err := row.Scan(
		&article.ID, &article.Title, &article.Description, &article.URL,
		&article.PublishedAt, &article.SourceName, &categories,
		&article.RelevanceScore, &article.Latitude, &article.Longitude,
		&article.Summary, &article.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(categories), &article.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories for article '%s': %w", article.ID, err)
	}

	return &article, nil
}

func collectArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
