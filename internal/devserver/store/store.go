// Package store persists the development server's users and character
// documents in SQLite. Character records are kept as opaque JSON documents;
// the stub does not interpret their shape beyond the id it assigns.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/runnervault/internal/common"
	"github.com/dmitrijs2005/runnervault/internal/devserver/migrations"
)

// ErrUsernameTaken is returned by CreateUser when the username exists.
var ErrUsernameTaken = errors.New("username already taken")

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	DiscordID    string
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite database at dsn and brings the schema up to date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return New(db), nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, discord_id) VALUES (?, ?, ?, ?)
	`, u.ID, u.Username, u.PasswordHash, u.DiscordID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, discord_id FROM users WHERE username = ?`, username)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, discord_id FROM users WHERE id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DiscordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListCharacters returns the user's character documents in insertion order.
func (s *Store) ListCharacters(ctx context.Context, userID string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM characters WHERE user_id = ? ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	docs := make([][]byte, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan character row: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate character rows: %w", err)
	}

	return docs, nil
}

func (s *Store) CreateCharacter(ctx context.Context, id, userID string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO characters (id, user_id, doc) VALUES (?, ?, ?)
	`, id, userID, doc)
	if err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// UpdateCharacter replaces the document of the given character, scoped to
// its owner. Returns common.ErrNotFound when no such record exists for the
// user.
func (s *Store) UpdateCharacter(ctx context.Context, id, userID string, doc []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET doc = ? WHERE id = ? AND user_id = ?
	`, doc, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
