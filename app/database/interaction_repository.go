package database

import (
	"fmt"
	"time"
)

var _ InteractionRepository = (*interactionRepository)(nil)

type interactionRepository struct {
	db *DB
}

func NewInteractionRepository(db *DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) GetInteractionCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get interaction count: %w", err)
	}
	return count, nil
}

func (r *interactionRepository) ListSince(since time.Time) ([]Interaction, error) {
	rows, err := r.db.Query(`
		SELECT id, article_id, event_type, weight, latitude, longitude, occurred_at
		FROM interactions
		WHERE occurred_at >= ?
		ORDER BY occurred_at DESC
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var interaction Interaction
		err := rows.Scan(
			&interaction.ID, &interaction.ArticleID, &interaction.EventType,
			&interaction.Weight, &interaction.Latitude, &interaction.Longitude,
			&interaction.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		interactions = append(interactions, interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction rows: %w", err)
	}

	return interactions, nil
}

func (r *interactionRepository) InsertInteraction(interaction Interaction) error {
	_, err := r.db.Exec(`
		INSERT INTO interactions (
			id, article_id, event_type, weight, latitude, longitude, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, interaction.ID, interaction.ArticleID, interaction.EventType,
		interaction.Weight, interaction.Latitude, interaction.Longitude,
		interaction.OccurredAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}

	return nil
}
