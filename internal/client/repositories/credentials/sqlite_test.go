package credentials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:credrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS credentials (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM credentials`)
	require.NoError(t, err)
	return db
}

func TestGetAbsentKey(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	value, err := repo.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "token", []byte("first")))
	value, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)

	require.NoError(t, repo.Set(ctx, "token", []byte("second")))
	value, err = repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "token", []byte("abc")))
	require.NoError(t, repo.Delete(ctx, "token"))

	value, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Nil(t, value)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, "token"))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, "token", []byte("abc")))
	require.NoError(t, repo.Set(ctx, "other", []byte("def")))
	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{"token", "other"} {
		value, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, value)
	}
}
