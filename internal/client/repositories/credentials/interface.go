// Package credentials persists the session credential between runs. It is a
// small key/value store over the client's local SQLite database, playing the
// role the browser's localStorage plays for the web client.
package credentials

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
