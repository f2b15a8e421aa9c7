// Package session owns the authenticated-user identity and the bearer
// credential. It is the sole writer of session state: login, register,
// logout, and the silent restore performed at startup.
package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/runnervault/internal/client/api"
	"github.com/dmitrijs2005/runnervault/internal/client/models"
	"github.com/dmitrijs2005/runnervault/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/logging"
)

// credentialKey is the fixed key the bearer token is stored under.
const credentialKey = "token"

// Manager holds the session invariant: user is non-nil iff a validated token
// is held. Both are cleared together on logout or credential rejection.
type Manager struct {
	client api.Client
	creds  credentials.Repository
	log    logging.Logger

	user  *models.User
	token string
}

func NewManager(client api.Client, creds credentials.Repository, log logging.Logger) *Manager {
	return &Manager{client: client, creds: creds, log: log}
}

// User returns the authenticated user, or nil when no session exists.
func (m *Manager) User() *models.User {
	return m.user
}

func (m *Manager) IsAuthenticated() bool {
	return m.user != nil
}

// AuthClient returns a transport client bound to the current credential.
// When no session exists it short-circuits with common.ErrAuthorization, so
// callers cannot reach the network unauthenticated.
func (m *Manager) AuthClient() (api.AuthClient, error) {
	if m.user == nil || m.token == "" {
		return nil, common.ErrAuthorization
	}
	return m.client.WithToken(m.token), nil
}

// Restore attempts a silent session restore from the stored credential.
//
// A missing credential returns immediately with no network call. A stored
// credential is validated against the who-am-I endpoint; any failure there is
// absorbed as "not logged in" and the stored credential is cleared. Only a
// failure to read the store itself is returned as an error.
func (m *Manager) Restore(ctx context.Context) error {
	raw, err := m.creds.Get(ctx, credentialKey)
	if err != nil {
		return fmt.Errorf("reading stored credential: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	token := string(raw)
	user, err := m.client.WithToken(token).Me(ctx)
	if err != nil {
		m.log.Warn(ctx, "stored credential rejected, clearing it", "error", err)
		if delErr := m.creds.Delete(ctx, credentialKey); delErr != nil {
			m.log.Error(ctx, "failed to clear stored credential", "error", delErr)
		}
		return nil
	}

	m.token = token
	m.user = user
	m.log.Info(ctx, "session restored", "username", user.Username)
	return nil
}

// Login authenticates and populates the session. The who-am-I probe runs
// with the candidate token before anything is persisted, so a failure on
// either call leaves the session and the store untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuthentication, err)
	}

	user, err := m.client.WithToken(token).Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAuthentication, err)
	}

	if err := m.creds.Set(ctx, credentialKey, []byte(token)); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}

	m.token = token
	m.user = user
	return nil
}

// Register creates a new account. It does not authenticate the caller and
// does not mutate the session; the caller is expected to log in afterwards.
func (m *Manager) Register(ctx context.Context, username, password, discordID string) error {
	if err := m.client.Register(ctx, username, password, discordID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRegistration, err)
	}
	return nil
}

// Logout clears the stored credential and empties the session. The in-memory
// session is cleared even if the store cleanup fails.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.creds.Delete(ctx, credentialKey)

	m.token = ""
	m.user = nil

	if err != nil {
		return fmt.Errorf("clearing stored credential: %w", err)
	}
	return nil
}
