package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Select(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Cancel(ctx context.Context) error
	Show(ctx context.Context) error
	Set(ctx context.Context, args []string) error
	AddItem(ctx context.Context, args []string) error
	DelItem(ctx context.Context, args []string) error
	SetItem(ctx context.Context, args []string) error
	Submit(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the RunnerVault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands when not logged in: help, register, login, exit.
// Commands when logged in: help, list, select <id>, new, cancel, show,
// set <field> <value>, additem <list>, delitem <list> <index>,
// setitem <list> <index> <name|rating> <value>, submit, logout, exit.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("rv> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, select <id>, new, cancel, show, set <field> <value>, additem <list>, delitem <list> <index>, setitem <list> <index> <name|rating> <value>, submit, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "select":
			_ = a.Select(ctx, args)

		case "new":
			_ = a.New(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "show":
			_ = a.Show(ctx)

		case "set":
			_ = a.Set(ctx, args)

		case "additem":
			_ = a.AddItem(ctx, args)

		case "delitem":
			_ = a.DelItem(ctx, args)

		case "setitem":
			_ = a.SetItem(ctx, args)

		case "submit":
			_ = a.Submit(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
