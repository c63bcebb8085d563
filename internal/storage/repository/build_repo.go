// Package repository contains database access for persisted deck builds.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmercer/deckforge/internal/storage/models"
)

// ErrBuildNotFound is returned when a build ID does not exist.
var ErrBuildNotFound = errors.New("build not found")

// BuildRepository handles database operations for deck build history.
type BuildRepository interface {
	// Save persists a build with its cards and unavailable-card list,
	// returning the new build ID.
	Save(ctx context.Context, build *models.Build, cards []*models.BuildCard, unavailable []string) (int64, error)

	// Get retrieves a build with its cards.
	Get(ctx context.Context, id int64) (*models.Build, []*models.BuildCard, error)

	// GetUnavailable retrieves the unavailable-card list for a build.
	GetUnavailable(ctx context.Context, id int64) ([]string, error)

	// List retrieves recent builds, newest first. A non-empty commander
	// filters by commander name.
	List(ctx context.Context, commander string, limit int) ([]*models.Build, error)

	// Delete removes a build and its cards.
	Delete(ctx context.Context, id int64) error
}

// buildRepository is the concrete implementation of BuildRepository.
type buildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new build repository.
func NewBuildRepository(db *sql.DB) BuildRepository {
	return &buildRepository{db: db}
}

// Save persists a build with its cards inside a transaction.
func (r *buildRepository) Save(ctx context.Context, build *models.Build, cards []*models.BuildCard, unavailable []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO builds (commander, partner, theme, budget, total_price, deck_size)
		VALUES (?, ?, ?, ?, ?, ?)
	`, build.Commander, build.Partner, build.Theme, build.Budget, build.TotalPrice, build.DeckSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert build: %w", err)
	}

	buildID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get build ID: %w", err)
	}

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO build_cards (build_id, card_name, primary_type, quantity, price, score, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer func() { _ = cardStmt.Close() }()

	for i, card := range cards {
		if _, err := cardStmt.ExecContext(ctx, buildID, card.CardName, card.PrimaryType, card.Quantity, card.Price, card.Score, i); err != nil {
			return 0, fmt.Errorf("failed to insert card %q: %w", card.CardName, err)
		}
	}

	for _, name := range unavailable {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO build_unavailable_cards (build_id, card_name) VALUES (?, ?)
		`, buildID, name); err != nil {
			return 0, fmt.Errorf("failed to insert unavailable card %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit build: %w", err)
	}

	return buildID, nil
}

// Get retrieves a build with its cards in selection order.
func (r *buildRepository) Get(ctx context.Context, id int64) (*models.Build, []*models.BuildCard, error) {
	build := &models.Build{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, commander, COALESCE(partner, ''), COALESCE(theme, ''), budget, total_price, deck_size, created_at
		FROM builds WHERE id = ?
	`, id).Scan(
		&build.ID,
		&build.Commander,
		&build.Partner,
		&build.Theme,
		&build.Budget,
		&build.TotalPrice,
		&build.DeckSize,
		&build.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrBuildNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get build: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, build_id, card_name, COALESCE(primary_type, ''), quantity, price, score, position
		FROM build_cards WHERE build_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get build cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.BuildCard
	for rows.Next() {
		card := &models.BuildCard{}
		if err := rows.Scan(&card.ID, &card.BuildID, &card.CardName, &card.PrimaryType, &card.Quantity, &card.Price, &card.Score, &card.Position); err != nil {
			return nil, nil, fmt.Errorf("failed to scan build card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate build cards: %w", err)
	}

	return build, cards, nil
}

// GetUnavailable retrieves the unavailable-card names for a build.
func (r *buildRepository) GetUnavailable(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT card_name FROM build_unavailable_cards WHERE build_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get unavailable cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan unavailable card: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// List retrieves recent builds, newest first.
func (r *buildRepository) List(ctx context.Context, commander string, limit int) ([]*models.Build, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, commander, COALESCE(partner, ''), COALESCE(theme, ''), budget, total_price, deck_size, created_at
		FROM builds
	`
	args := []any{}
	if commander != "" {
		query += " WHERE commander = ?"
		args = append(args, commander)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var builds []*models.Build
	for rows.Next() {
		build := &models.Build{}
		if err := rows.Scan(&build.ID, &build.Commander, &build.Partner, &build.Theme, &build.Budget, &build.TotalPrice, &build.DeckSize, &build.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, build)
	}
	return builds, rows.Err()
}

// Delete removes a build; cards cascade.
func (r *buildRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM builds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrBuildNotFound
	}
	return nil
}
