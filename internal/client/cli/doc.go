// Package cli implements the interactive terminal UI for RunnerVault: a
// small REPL over the session manager and the character editor. The REPL is
// the "caller" in the architecture: it surfaces errors to the user and
// decides which commands are offered, but never reaches around the session
// or editor APIs.
package cli
