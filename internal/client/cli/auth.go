package cli

import (
	"context"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, password and optional Discord id, and
// attempts to create a new account. Registration never signs the user in;
// on success the user is told to log in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	discordID, err := getSimpleText(a.reader, "Enter Discord id (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, username, password, discordID); err != nil {
		a.log.Error(ctx, "registration failed", "error", err)
		return err
	}

	printlnFn("Registered! You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates. On success the character
// list is fetched immediately, which is the "navigate to the character view"
// step of the web client.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		a.log.Error(ctx, "login failed", "error", err)
		return err
	}

	printlnFn("Logged in!")

	if err := a.editor.FetchAll(ctx); err != nil {
		a.log.Warn(ctx, "character fetch failed", "error", err)
	}
	return nil
}

// Logout clears the session and all editor state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout cleanup failed", "error", err)
		return err
	}
	a.editor.Reset()
	printlnFn("Logged out.")
	return nil
}
