package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"

	"github.com/dmitrijs2005/runnervault/internal/client/api"
	"github.com/dmitrijs2005/runnervault/internal/client/config"
	clientdb "github.com/dmitrijs2005/runnervault/internal/client/db"
	"github.com/dmitrijs2005/runnervault/internal/client/editor"
	"github.com/dmitrijs2005/runnervault/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/runnervault/internal/client/session"
	"github.com/dmitrijs2005/runnervault/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	session *session.Manager
	editor  *editor.Editor
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := clientdb.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout)
	creds := credentials.NewSQLiteRepository(db)

	sm := session.NewManager(apiClient, creds, log)
	ed := editor.New(sm, log)

	return &App{
		config:  cfg,
		session: sm,
		editor:  ed,
		db:      db,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	if user := a.session.User(); user != nil {
		return "(" + user.Username + ")"
	}
	return ""
}

// Run performs the silent session restore, activates the editor if a session
// exists, and hands control to the REPL. The restore fully resolves before
// the first character fetch; that ordering is the activation gate.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.session.Restore(ctx); err != nil {
		return err
	}
	if a.session.IsAuthenticated() {
		if err := a.editor.FetchAll(ctx); err != nil {
			a.log.Warn(ctx, "initial character fetch failed", "error", err)
		}
	}

	printlnFn("Welcome to RunnerVault (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
	return nil
}
