// Package api defines the transport client for the character service and its
// HTTP implementation. The interface is split in two: Client covers the
// unauthenticated surface, AuthClient the calls requiring a bearer token.
//
// There is no client-global credential state: WithToken derives an AuthClient
// bound to one token, and the session layer hands that out per call site.
package api

import (
	"context"

	"github.com/dmitrijs2005/runnervault/internal/client/models"
)

type Client interface {
	// Register creates a new account. discordID may be empty.
	Register(ctx context.Context, username, password, discordID string) error

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// WithToken returns an AuthClient whose calls carry the given token.
	WithToken(token string) AuthClient
}

type AuthClient interface {
	// Me fetches the identity record for the token's user.
	Me(ctx context.Context) (*models.User, error)

	// ListCharacters fetches the user's full character list.
	ListCharacters(ctx context.Context) ([]models.Character, error)

	// CreateCharacter stores a new record and returns it with the
	// server-assigned id.
	CreateCharacter(ctx context.Context, c models.Character) (models.Character, error)

	// UpdateCharacter replaces the record with the given id and returns the
	// stored representation.
	UpdateCharacter(ctx context.Context, id string, c models.Character) (models.Character, error)
}
