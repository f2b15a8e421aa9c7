package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/runnervault/internal/client/api"
	"github.com/dmitrijs2005/runnervault/internal/client/models"
	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/logging"
)

// ---- fakes ----

// fakeSource stands in for the session manager: it either yields the fake
// transport client or refuses with the authorization sentinel.
type fakeSource struct {
	client api.AuthClient
	err    error
}

func (s *fakeSource) AuthClient() (api.AuthClient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.client, nil
}

type fakeAuthClient struct {
	mu sync.Mutex

	ListRet []models.Character
	ListErr error

	CreateRet models.Character
	CreateErr error

	UpdateRet models.Character
	UpdateErr error

	ListCalls   int
	CreateCalls int
	UpdateCalls int

	LastUpdateID string
	LastPayload  models.Character

	// When non-nil, CreateCharacter signals on entered and then blocks until
	// release is closed. Used by the busy-guard test.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeAuthClient) Me(ctx context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Username: "raven"}, nil
}

func (f *fakeAuthClient) ListCharacters(ctx context.Context) ([]models.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Character(nil), f.ListRet...), nil
}

func (f *fakeAuthClient) CreateCharacter(ctx context.Context, c models.Character) (models.Character, error) {
	f.mu.Lock()
	f.CreateCalls++
	f.LastPayload = c
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	if f.CreateErr != nil {
		return models.Character{}, f.CreateErr
	}
	return f.CreateRet, nil
}

func (f *fakeAuthClient) UpdateCharacter(ctx context.Context, id string, c models.Character) (models.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastUpdateID = id
	f.LastPayload = c
	if f.UpdateErr != nil {
		return models.Character{}, f.UpdateErr
	}
	return f.UpdateRet, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newEditor(client *fakeAuthClient) *Editor {
	return New(&fakeSource{client: client}, testLogger())
}

func loadedEditor(t *testing.T, client *fakeAuthClient) *Editor {
	t.Helper()
	e := newEditor(client)
	require.NoError(t, e.FetchAll(context.Background()))
	return e
}

// ---- TESTS ----

func TestOperationsWithoutSession(t *testing.T) {
	client := &fakeAuthClient{}
	e := New(&fakeSource{err: common.ErrAuthorization}, testLogger())

	assert.ErrorIs(t, e.FetchAll(context.Background()), common.ErrAuthorization)
	assert.ErrorIs(t, e.StartCreate(), common.ErrAuthorization)
	assert.ErrorIs(t, e.StartEdit("x"), common.ErrAuthorization)
	assert.ErrorIs(t, e.Submit(context.Background()), common.ErrAuthorization)

	// No network call went out and no state changed.
	assert.Zero(t, client.ListCalls)
	assert.Zero(t, client.CreateCalls)
	assert.Zero(t, client.UpdateCalls)
	assert.Empty(t, e.Characters())
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestFetchAllReplacesList(t *testing.T) {
	client := &fakeAuthClient{ListRet: []models.Character{{ID: "c1", Name: "Raven"}, {ID: "c2", Name: "Dozer"}}}
	e := newEditor(client)

	require.NoError(t, e.FetchAll(context.Background()))

	list := e.Characters()
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)
}

func TestFetchAllFailureKeepsPreviousList(t *testing.T) {
	client := &fakeAuthClient{ListRet: []models.Character{{ID: "c1"}}}
	e := loadedEditor(t, client)

	client.ListErr = errors.New("boom")
	err := e.FetchAll(context.Background())
	assert.ErrorIs(t, err, common.ErrFetch)

	require.Len(t, e.Characters(), 1)
}

func TestStartCreateResetsDraft(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})

	require.NoError(t, e.StartCreate())

	assert.Equal(t, ModeCreating, e.Mode())
	draft := e.Draft()
	assert.Empty(t, draft.ID)
	assert.Empty(t, draft.Name)
	assert.NotNil(t, draft.Skills)
	assert.Empty(t, draft.Skills)
}

func TestStartEditLoadsAndNormalizes(t *testing.T) {
	strength := 5
	client := &fakeAuthClient{ListRet: []models.Character{
		{ID: "c1", Name: "Raven", Strength: &strength, Skills: []models.RatedItem{{Name: "Pistols", Rating: 4}}},
	}}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartEdit("c1"))

	assert.Equal(t, ModeEditing, e.Mode())
	assert.Equal(t, "c1", e.Target())

	draft := e.Draft()
	assert.Equal(t, "Raven", draft.Name)
	assert.Equal(t, 5, *draft.Strength)
	// Absent lists come back as empty sequences, never nil.
	assert.NotNil(t, draft.Gear)
	assert.NotNil(t, draft.Bioware)
}

func TestStartEditUnknownID(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})

	err := e.StartEdit("ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestDraftIsIndependentOfList(t *testing.T) {
	client := &fakeAuthClient{ListRet: []models.Character{
		{ID: "c1", Name: "Raven", Skills: []models.RatedItem{{Name: "Pistols", Rating: 4}}},
	}}
	e := loadedEditor(t, client)
	require.NoError(t, e.StartEdit("c1"))

	require.NoError(t, e.SetItemField("skills", 0, "rating", "6"))
	require.NoError(t, e.SetField("name", "Corvid"))

	// Local edits never touch the character list.
	assert.Equal(t, "Raven", e.Characters()[0].Name)
	assert.Equal(t, 4, e.Characters()[0].Skills[0].Rating)
}

func TestSelectThenDeselect(t *testing.T) {
	client := &fakeAuthClient{ListRet: []models.Character{{ID: "x", Name: "Raven"}}}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartEdit("x"))
	e.Deselect()

	assert.Equal(t, ModeIdle, e.Mode())
	assert.Empty(t, e.Target())
	require.Len(t, e.Characters(), 1)
	assert.Equal(t, "Raven", e.Characters()[0].Name)
}

func TestSetField(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})
	require.NoError(t, e.StartCreate())

	require.NoError(t, e.SetField("name", "Raven"))
	require.NoError(t, e.SetField("race", "Elf"))
	require.NoError(t, e.SetField("strength", "5"))
	require.NoError(t, e.SetField("essence", "5.5"))

	draft := e.Draft()
	assert.Equal(t, "Raven", draft.Name)
	assert.Equal(t, "Elf", draft.Race)
	assert.Equal(t, 5, *draft.Strength)
	assert.Equal(t, 5.5, *draft.Essence)

	// Empty values clear numeric fields back to null.
	require.NoError(t, e.SetField("strength", ""))
	require.NoError(t, e.SetField("essence", ""))
	draft = e.Draft()
	assert.Nil(t, draft.Strength)
	assert.Nil(t, draft.Essence)

	assert.Error(t, e.SetField("strength", "lots"))
	assert.Error(t, e.SetField("karma", "3"))
}

func TestDraftOpsRequireActiveDraft(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})

	assert.ErrorIs(t, e.SetField("name", "Raven"), ErrNoDraft)
	assert.ErrorIs(t, e.AddItem("skills"), ErrNoDraft)
	assert.ErrorIs(t, e.RemoveItem("skills", 0), ErrNoDraft)
	assert.ErrorIs(t, e.SetItemField("skills", 0, "name", "Pistols"), ErrNoDraft)
}

func TestAddSetRemoveItemRoundTrip(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})
	require.NoError(t, e.StartCreate())

	require.NoError(t, e.AddItem("skills"))
	require.NoError(t, e.SetItemField("skills", 0, "name", "Pistols"))
	require.NoError(t, e.SetItemField("skills", 0, "rating", "4"))

	draft := e.Draft()
	require.Len(t, draft.Skills, 1)
	assert.Equal(t, models.RatedItem{Name: "Pistols", Rating: 4}, draft.Skills[0])

	require.NoError(t, e.RemoveItem("skills", 0))
	assert.Empty(t, e.Draft().Skills)
}

func TestItemOpsValidation(t *testing.T) {
	e := loadedEditor(t, &fakeAuthClient{})
	require.NoError(t, e.StartCreate())

	assert.Error(t, e.AddItem("spells"))
	assert.ErrorIs(t, e.RemoveItem("skills", 0), common.ErrNotFound)

	require.NoError(t, e.AddItem("skills"))
	assert.ErrorIs(t, e.SetItemField("skills", 5, "name", "Pistols"), common.ErrNotFound)
	assert.Error(t, e.SetItemField("skills", 0, "rating", "high"))
	assert.Error(t, e.SetItemField("skills", 0, "color", "black"))
}

func TestSubmitCreateAppendsServerRecord(t *testing.T) {
	client := &fakeAuthClient{
		ListRet:   []models.Character{{ID: "c1", Name: "Dozer"}},
		CreateRet: models.Character{ID: "assigned", Name: "Raven", Race: "Elf"},
	}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartCreate())
	require.NoError(t, e.SetField("name", "Raven"))
	require.NoError(t, e.SetField("race", "Elf"))

	require.NoError(t, e.Submit(context.Background()))

	// The payload carried no identifier.
	assert.Empty(t, client.LastPayload.ID)
	assert.Equal(t, "Raven", client.LastPayload.Name)

	list := e.Characters()
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, models.Character{ID: "assigned", Name: "Raven", Race: "Elf"}, list[1])
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestSubmitUpdateReplacesOnlyTarget(t *testing.T) {
	client := &fakeAuthClient{
		ListRet: []models.Character{
			{ID: "c1", Name: "Dozer"},
			{ID: "abc123", Name: "Raven"},
			{ID: "c3", Name: "Whisper"},
		},
		UpdateRet: models.Character{ID: "abc123", Name: "Corvid"},
	}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartEdit("abc123"))
	require.NoError(t, e.SetField("name", "Corvid"))
	require.NoError(t, e.Submit(context.Background()))

	assert.Equal(t, "abc123", client.LastUpdateID)

	list := e.Characters()
	require.Len(t, list, 3)
	assert.Equal(t, "Dozer", list[0].Name)
	assert.Equal(t, "Corvid", list[1].Name)
	assert.Equal(t, "Whisper", list[2].Name)
	assert.Equal(t, ModeIdle, e.Mode())
	assert.Empty(t, e.Target())
}

func TestSubmitWhileIdle(t *testing.T) {
	client := &fakeAuthClient{}
	e := loadedEditor(t, client)

	assert.ErrorIs(t, e.Submit(context.Background()), ErrNoDraft)
	assert.Zero(t, client.CreateCalls)
	assert.Zero(t, client.UpdateCalls)
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	client := &fakeAuthClient{CreateErr: errors.New("boom")}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartCreate())
	require.NoError(t, e.SetField("name", "Raven"))

	err := e.Submit(context.Background())
	assert.ErrorIs(t, err, common.ErrSubmit)

	// The user's in-progress edits survive for a retry.
	assert.Equal(t, ModeCreating, e.Mode())
	assert.Equal(t, "Raven", e.Draft().Name)
	assert.Empty(t, e.Characters())
}

func TestSecondSubmitRejectedWhileInFlight(t *testing.T) {
	client := &fakeAuthClient{
		CreateRet: models.Character{ID: "assigned", Name: "Raven"},
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartCreate())
	require.NoError(t, e.SetField("name", "Raven"))

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- e.Submit(context.Background())
	}()

	// Wait until the first submit has reached the network layer.
	select {
	case <-client.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the client")
	}

	assert.ErrorIs(t, e.Submit(context.Background()), common.ErrBusy)

	close(client.release)
	require.NoError(t, <-firstDone)

	// Exactly one create reached the network layer.
	assert.Equal(t, 1, client.CreateCalls)
	require.Len(t, e.Characters(), 1)
}

func TestResetDropsInFlightResult(t *testing.T) {
	client := &fakeAuthClient{
		CreateRet: models.Character{ID: "assigned", Name: "Raven"},
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	e := loadedEditor(t, client)

	require.NoError(t, e.StartCreate())
	require.NoError(t, e.SetField("name", "Raven"))

	done := make(chan error, 1)
	go func() {
		done <- e.Submit(context.Background())
	}()

	select {
	case <-client.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("submit never reached the client")
	}

	// Logout happens while the call is in flight.
	e.Reset()
	close(client.release)
	require.NoError(t, <-done)

	// The stale result was dropped instead of resurrecting state.
	assert.Empty(t, e.Characters())
	assert.Equal(t, ModeIdle, e.Mode())
}

func TestResetClearsEverything(t *testing.T) {
	client := &fakeAuthClient{ListRet: []models.Character{{ID: "c1"}}}
	e := loadedEditor(t, client)
	require.NoError(t, e.StartEdit("c1"))

	e.Reset()

	assert.Empty(t, e.Characters())
	assert.Equal(t, ModeIdle, e.Mode())
	assert.Empty(t, e.Target())
}
