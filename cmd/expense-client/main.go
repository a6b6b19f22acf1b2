package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvcrn/expense-client/internal/api"
	"github.com/dvcrn/expense-client/internal/app"
	"github.com/dvcrn/expense-client/internal/client"
	"github.com/dvcrn/expense-client/internal/config"
	"github.com/dvcrn/expense-client/internal/logger"
)

const usage = `Usage: expense-client [--config path] <command> [flags]

Commands:
  login       sign in and store the session
  register    create an account and store the session
  logout      forget the stored session
  whoami      show the stored user
  expenses    list expenses
  budgets     list budgets
  categories  list categories
  dashboard   show dashboard statistics
  serve       run the local session gateway
`

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.ForEnv(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := app.OpenStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer closer.Close()

	a := app.New(cfg, store, log)
	a.Notifier.RegisterHandler(func() {
		fmt.Fprintln(os.Stderr, "Your session has expired. Run `expense-client login` to sign in again.")
	})

	if err := run(ctx, a, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			os.Exit(3)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	switch cmd {
	case "login":
		user := fs.String("user", "", "email or username")
		password := fs.String("password", os.Getenv("EXPENSE_PASSWORD"), "password (default $EXPENSE_PASSWORD)")
		fs.Parse(args)
		if *user == "" || *password == "" {
			return errors.New("login requires -user and -password")
		}
		data, err := a.API.Auth.Login(ctx, api.LoginRequest{EmailOrUsername: *user, Password: *password})
		if err != nil {
			return err
		}
		return printJSON(data.User)

	case "register":
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email")
		password := fs.String("password", os.Getenv("EXPENSE_PASSWORD"), "password (default $EXPENSE_PASSWORD)")
		fs.Parse(args)
		if *username == "" || *email == "" || *password == "" {
			return errors.New("register requires -username, -email and -password")
		}
		data, err := a.API.Auth.Register(ctx, api.RegisterRequest{Username: *username, Email: *email, Password: *password})
		if err != nil {
			return err
		}
		return printJSON(data.User)

	case "logout":
		fs.Parse(args)
		return a.API.Auth.Logout(ctx)

	case "whoami":
		fs.Parse(args)
		ok, err := a.API.Auth.IsAuthenticated(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("not logged in")
		}
		user, err := a.API.Auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return printJSON(user)

	case "expenses":
		limit := fs.Int("limit", 20, "page size")
		page := fs.Int("page", 1, "page number")
		search := fs.String("search", "", "search term")
		category := fs.String("category", "", "category id")
		fs.Parse(args)
		res, err := a.API.Expenses.List(ctx, api.ExpenseQuery{Page: *page, Limit: *limit, Search: *search, CategoryID: *category})
		if err != nil {
			return err
		}
		return printJSON(res)

	case "budgets":
		activeOnly := fs.Bool("active", false, "only active budgets")
		fs.Parse(args)
		var active *bool
		if *activeOnly {
			active = activeOnly
		}
		res, err := a.API.Budgets.List(ctx, active)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "categories":
		fs.Parse(args)
		res, err := a.API.Categories.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "dashboard":
		fs.Parse(args)
		res, err := a.API.Statistics.Dashboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "serve":
		fs.Parse(args)
		return serve(ctx, a, a.Logger)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func serve(ctx context.Context, a *app.App, log zerolog.Logger) error {
	srv, err := a.NewServer()
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              a.Config.Gateway.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Str("upstream", a.Config.API.BaseURL).Msg("Starting gateway")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("gateway failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
