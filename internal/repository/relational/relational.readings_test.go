package relational_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/database"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository/relational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, createTable bool) *relational.ReadingRepo {
	t.Helper()
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := relational.NewReadingRepository(db)
	if createTable {
		require.NoError(t, repo.CreateTable(ctx))
	}
	return repo
}

func TestReadingRepo_InsertThenList(t *testing.T) {
	repo := newRepo(t, true)
	ctx := context.Background()

	before := time.Now().UTC().Add(-2 * time.Second)
	require.NoError(t, repo.InsertReading(ctx, 36.5, -23.5, -46.6))
	require.NoError(t, repo.InsertReading(ctx, 4.2, -22.9, -43.2))

	readings, err := repo.ListReadings(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, 36.5, readings[0].Temperature)
	assert.Equal(t, -23.5, readings[0].Latitude)
	assert.Equal(t, -46.6, readings[0].Longitude)
	assert.False(t, readings[0].ReceivedAt.IsZero(), "received_at is assigned by the store")
	assert.True(t, readings[0].ReceivedAt.After(before))

	assert.Equal(t, 4.2, readings[1].Temperature)
}

func TestReadingRepo_ListEmpty(t *testing.T) {
	repo := newRepo(t, true)

	readings, err := repo.ListReadings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
}

func TestReadingRepo_CreateTableIsIdempotent(t *testing.T) {
	repo := newRepo(t, true)
	assert.NoError(t, repo.CreateTable(context.Background()))
}

func TestReadingRepo_MissingTableIsStorageError(t *testing.T) {
	repo := newRepo(t, false)
	ctx := context.Background()

	err := repo.InsertReading(ctx, 1, 2, 3)
	require.Error(t, err)
	assert.True(t, errors.IsStorage(err))

	assert.Equal(t, 1, strings.Count(err.Error(), "storage:"), err.Error())

	_, err = repo.ListReadings(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsStorage(err))
	assert.Equal(t, 1, strings.Count(err.Error(), "storage:"), err.Error())
}

func TestReadingRepo_ExistingTableLayout(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.GetDB().ExecContext(ctx, `CREATE TABLE registros_vacinas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		temperatura REAL NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		recebido_em DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	repo, err := relational.NewReadingRepositoryWithSchema(db, relational.Schema{
		Table:       "registros_vacinas",
		Temperature: "temperatura",
		ReceivedAt:  "recebido_em",
	})
	require.NoError(t, err)

	require.NoError(t, repo.InsertReading(ctx, 4.1, -23.55, -46.63))
	readings, err := repo.ListReadings(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 4.1, readings[0].Temperature)
	assert.Equal(t, -23.55, readings[0].Latitude)
	assert.False(t, readings[0].ReceivedAt.IsZero())
}

func TestReadingRepo_CreateTableWithCustomLayout(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := relational.NewReadingRepositoryWithSchema(db, relational.Schema{Table: "cold_readings", Temperature: "temp_c"})
	require.NoError(t, err)
	require.NoError(t, repo.CreateTable(ctx))
	require.NoError(t, repo.InsertReading(ctx, -18, 1, 2))

	var n int
	require.NoError(t, db.GetDB().GetContext(ctx, &n, `SELECT COUNT(*) FROM cold_readings WHERE temp_c = -18`))
	assert.Equal(t, 1, n)
}

func TestSchema_RejectsUnsafeIdentifiers(t *testing.T) {
	for _, table := range []string{"readings; DROP TABLE x", "1readings", "read-ings", "`readings`"} {
		_, err := relational.NewReadingRepositoryWithSchema(nil, relational.Schema{Table: table})
		require.Error(t, err, table)
		assert.True(t, errors.IsValidation(err), table)
	}
	assert.NoError(t, relational.DefaultSchema().Validate())
}

func TestReadingRepo_Ping(t *testing.T) {
	repo := newRepo(t, false)
	assert.NoError(t, repo.Ping(context.Background()))
}
