// ABOUTME: Operator CLI for the portfolio admin core
// ABOUTME: Bootstrap, secret resets, session status and audit inspection against the local database

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ejcents/portfolio-admin/internal/auth"
	"github.com/ejcents/portfolio-admin/internal/config"
	"github.com/ejcents/portfolio-admin/internal/credential"
	"github.com/ejcents/portfolio-admin/internal/profile"
	"github.com/ejcents/portfolio-admin/internal/session"
	"github.com/ejcents/portfolio-admin/internal/store"
)

const defaultConfigPath = "portfolio-admin.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	app, err := newApp()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	switch cmd {
	case "status":
		err = app.cmdStatus()
	case "accounts":
		err = app.cmdAccounts()
	case "bootstrap":
		err = app.cmdBootstrap()
	case "check":
		err = app.cmdCheck(args)
	case "reset-secret":
		err = app.cmdResetSecret(args)
	case "reset-super":
		err = app.cmdResetSuper(args)
	case "reset-defaults":
		err = app.cmdResetDefaults()
	case "audit":
		err = app.cmdAudit(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("portfolio-admin — credential and session administration")
	fmt.Println()
	fmt.Println("Usage: portfolio-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  status                      Show the persisted session, if any")
	fmt.Println("  accounts                    List admin accounts in registry order")
	fmt.Println("  bootstrap                   Seed default credentials if the registry is empty")
	fmt.Println("  check <secret>              Show which tier a secret resolves to (read-only)")
	fmt.Println("  reset-secret <id> <secret>  Replace a named account's secret")
	fmt.Println("  reset-super <secret>        Replace the super-secret")
	fmt.Println("  reset-defaults              Restore the bootstrap credential set")
	fmt.Println("  audit                       Show recent audit log entries")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Printf("  PORTFOLIO_ADMIN_CONFIG      Config file path (default: %s)\n", defaultConfigPath)
}

// app wires the store, registry and facade for one CLI invocation.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	store  *store.SQLiteStore
	facade *auth.Facade
}

func newApp() (*app, error) {
	configPath := os.Getenv("PORTFOLIO_ADMIN_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}

	slog.SetDefault(setupLogger(cfg.Logging))

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	registry := credential.NewRegistry(s)
	sessions := session.New(s)
	registrar := profile.NewRegistrar(s, sessions)

	var audit store.AuditStore
	if !cfg.Audit.Disabled {
		audit = s
	}

	return &app{
		ctx:    context.Background(),
		cfg:    cfg,
		store:  s,
		facade: auth.NewFacade(registry, sessions, registrar, audit),
	}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}

func (a *app) cmdStatus() error {
	if err := a.facade.Restore(a.ctx); err != nil {
		return err
	}

	sess := a.facade.Session()
	if !sess.Authenticated {
		fmt.Println("No active session.")
		return nil
	}

	color.Green("Active session")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Role:\t%s\n", sess.Role)
	if sess.IdentityID != "" {
		fmt.Fprintf(w, "Identity:\t%s\n", sess.IdentityID)
	}
	if sess.Profile.Name != "" {
		fmt.Fprintf(w, "Name:\t%s\n", sess.Profile.Name)
	}
	if sess.Permissions != nil {
		fmt.Fprintf(w, "Manage admins:\t%v\n", sess.Permissions.CanManageAdmins)
		fmt.Fprintf(w, "Edit portfolio:\t%v\n", sess.Permissions.CanEditPortfolio)
	}
	return w.Flush()
}

func (a *app) cmdAccounts() error {
	accounts, err := a.store.ListAccounts(a.ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts. Run 'portfolio-admin bootstrap' to seed defaults.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tID\tNAME\tEMAIL\tMANAGE ADMINS")
	for _, acct := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n",
			acct.Position, acct.ID, acct.Profile.Name, acct.Profile.Email, acct.Permissions.CanManageAdmins)
	}
	return w.Flush()
}

func (a *app) cmdBootstrap() error {
	if a.cfg.Bootstrap.Disabled {
		return fmt.Errorf("bootstrap is disabled in config")
	}

	registry := credential.NewRegistry(a.store)
	if err := registry.BootstrapIfAbsent(a.ctx); err != nil {
		return err
	}
	color.Green("Registry ready.")
	return nil
}

func (a *app) cmdCheck(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: check <secret>")
	}

	role, id, ok, err := a.facade.CheckSecret(a.ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		color.Yellow("No tier matches this secret.")
		return nil
	}

	if id != "" {
		color.Green("Resolves to role %s (identity %s)", role, id)
	} else {
		color.Green("Resolves to role %s", role)
	}
	return nil
}

func (a *app) cmdResetSecret(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: reset-secret <id> <secret>")
	}
	if err := a.facade.ResetAccountSecret(a.ctx, args[0], args[1]); err != nil {
		return err
	}
	color.Green("Secret updated for %s.", args[0])
	return nil
}

func (a *app) cmdResetSuper(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: reset-super <secret>")
	}
	if err := a.facade.ResetSuperSecret(a.ctx, args[0]); err != nil {
		return err
	}
	color.Green("Super-secret updated.")
	return nil
}

func (a *app) cmdResetDefaults() error {
	if err := a.facade.ResetAllToDefaults(a.ctx); err != nil {
		return err
	}
	color.Yellow("Registry reset to bootstrap defaults.")
	return nil
}

func (a *app) cmdAudit(args []string) error {
	entries, err := a.store.ListAuditLog(a.ctx, store.AuditFilter{Limit: 50})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Audit log is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET")
	for _, e := range entries {
		actor := e.ActorRole
		if e.ActorID != "" {
			actor += ":" + e.ActorID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), actor, e.Action, e.TargetType, e.TargetID)
	}
	return w.Flush()
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
