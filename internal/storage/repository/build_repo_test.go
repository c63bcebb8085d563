package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jmercer/deckforge/internal/storage/models"
)

// setupBuildTestDB creates an in-memory database with build tables.
func setupBuildTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	schema := `
		CREATE TABLE builds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			commander TEXT NOT NULL,
			partner TEXT,
			theme TEXT,
			budget REAL NOT NULL DEFAULT 0,
			total_price REAL NOT NULL DEFAULT 0,
			deck_size INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE build_cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			build_id INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
			card_name TEXT NOT NULL,
			primary_type TEXT,
			quantity INTEGER NOT NULL DEFAULT 1,
			price REAL NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE build_unavailable_cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			build_id INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
			card_name TEXT NOT NULL
		);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func sampleBuild() (*models.Build, []*models.BuildCard) {
	build := &models.Build{
		Commander:  "Atraxa, Praetors' Voice",
		Theme:      "counters",
		Budget:     100,
		TotalPrice: 42.5,
		DeckSize:   2,
	}
	cards := []*models.BuildCard{
		{CardName: "Sol Ring", PrimaryType: "Artifact", Quantity: 1, Price: 1.5, Score: 0.45},
		{CardName: "Evolution Sage", PrimaryType: "Creature", Quantity: 1, Price: 0.8, Score: 0.62},
	}
	return build, cards
}

func TestBuildRepository_SaveAndGet(t *testing.T) {
	db := setupBuildTestDB(t)
	repo := NewBuildRepository(db)
	ctx := context.Background()

	build, cards := sampleBuild()
	id, err := repo.Save(ctx, build, cards, []string{"Doubling Season"})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, gotCards, err := repo.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Atraxa, Praetors' Voice", got.Commander)
	assert.Equal(t, "counters", got.Theme)
	assert.Equal(t, 42.5, got.TotalPrice)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, gotCards, 2)
	// Cards come back in selection order.
	assert.Equal(t, "Sol Ring", gotCards[0].CardName)
	assert.Equal(t, "Evolution Sage", gotCards[1].CardName)
	assert.Equal(t, 0, gotCards[0].Position)
	assert.Equal(t, 1, gotCards[1].Position)

	unavailable, err := repo.GetUnavailable(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Doubling Season"}, unavailable)
}

func TestBuildRepository_GetNotFound(t *testing.T) {
	db := setupBuildTestDB(t)
	repo := NewBuildRepository(db)

	_, _, err := repo.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrBuildNotFound)
}

func TestBuildRepository_List(t *testing.T) {
	db := setupBuildTestDB(t)
	repo := NewBuildRepository(db)
	ctx := context.Background()

	build, cards := sampleBuild()
	_, err := repo.Save(ctx, build, cards, nil)
	require.NoError(t, err)

	other := &models.Build{Commander: "Krenko, Mob Boss", DeckSize: 1}
	_, err = repo.Save(ctx, other, nil, nil)
	require.NoError(t, err)

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.List(ctx, "Krenko, Mob Boss", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Krenko, Mob Boss", filtered[0].Commander)
}

func TestBuildRepository_Delete(t *testing.T) {
	db := setupBuildTestDB(t)
	repo := NewBuildRepository(db)
	ctx := context.Background()

	build, cards := sampleBuild()
	id, err := repo.Save(ctx, build, cards, []string{"Doubling Season"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	_, _, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, ErrBuildNotFound)

	// Cards cascade with the build.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM build_cards WHERE build_id = ?", id).Scan(&count))
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, id), ErrBuildNotFound)
}
