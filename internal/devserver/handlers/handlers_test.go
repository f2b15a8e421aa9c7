package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/runnervault/internal/client/api"
	"github.com/dmitrijs2005/runnervault/internal/client/models"
	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/devserver/store"
	"github.com/dmitrijs2005/runnervault/internal/logging"

	_ "modernc.org/sqlite"
)

// setupServer runs the full router over a fresh in-memory store and returns
// the client-side transport pointed at it. Driving the real API client
// through the stub exercises both sides of the contract at once.
func setupServer(t *testing.T) *api.HTTPClient {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", "file:devhandlers?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.RunMigrations(ctx, db))
	for _, table := range []string{"characters", "users"} {
		_, err = db.Exec(`DELETE FROM ` + table)
		require.NoError(t, err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := New(store.New(db), []byte("test-secret"), time.Hour, logger)

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	return api.NewHTTPClient(srv.URL, 5*time.Second)
}

func registerAndLogin(t *testing.T, client *api.HTTPClient, username string) api.AuthClient {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, username, "secret", ""))
	token, err := client.Login(ctx, username, "secret")
	require.NoError(t, err)
	return client.WithToken(token)
}

func TestRegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	require.NoError(t, client.Register(ctx, "raven", "secret", "raven#1337"))

	token, err := client.Login(ctx, "raven", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := client.WithToken(token).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "raven", user.Username)
	assert.Equal(t, "raven#1337", user.DiscordID)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	require.NoError(t, client.Register(ctx, "raven", "secret", ""))

	err := client.Register(ctx, "raven", "other", "")
	require.Error(t, err)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	err := client.Register(ctx, "", "secret", "")
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	require.NoError(t, client.Register(ctx, "raven", "secret", ""))

	_, err := client.Login(ctx, "raven", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = client.Login(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthedRoutesRejectMissingToken(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	_, err := client.WithToken("").ListCharacters(ctx)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = client.WithToken("garbage").Me(ctx)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCharacterLifecycle(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)
	authed := registerAndLogin(t, client, "raven")

	list, err := authed.ListCharacters(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	strength := 5
	created, err := authed.CreateCharacter(ctx, models.Character{
		Name:     "Raven",
		Race:     "Elf",
		Strength: &strength,
		Skills:   []models.RatedItem{{Name: "Pistols", Rating: 4}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Raven", created.Name)

	list, err = authed.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, []models.RatedItem{{Name: "Pistols", Rating: 4}}, list[0].Skills)

	created.Name = "Corvid"
	updated, err := authed.UpdateCharacter(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Corvid", updated.Name)

	list, err = authed.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Corvid", list[0].Name)
}

func TestUpdateUnknownCharacter(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)
	authed := registerAndLogin(t, client, "raven")

	_, err := authed.UpdateCharacter(ctx, "ghost", models.Character{Name: "Nobody"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCharactersAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	client := setupServer(t)

	raven := registerAndLogin(t, client, "raven")
	dozer := registerAndLogin(t, client, "dozer")

	created, err := raven.CreateCharacter(ctx, models.Character{Name: "Raven"})
	require.NoError(t, err)

	list, err := dozer.ListCharacters(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = dozer.UpdateCharacter(ctx, created.ID, models.Character{Name: "stolen"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
