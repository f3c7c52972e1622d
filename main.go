package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"photoshare/app/config"
	"photoshare/app/logging"
)

const CliVersion = "1.0.0"

// exit is swapped out in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the CLI subcommand in os.Args.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("photoshare version %s\n", CliVersion)
	case "serve":
		if err := runCommand(serve); err != nil {
			fmt.Printf("Error: %v\n", err)
			exit(1)
		}
	case "sync":
		if err := runCommand(syncOnly); err != nil {
			fmt.Printf("Error: %v\n", err)
			exit(1)
		}
	case "backup":
		if err := runMaintenance(func(cfg *config.Config) error {
			return backup(cfg, argAt(2))
		}); err != nil {
			fmt.Printf("Error: %v\n", err)
			exit(1)
		}
	case "restore":
		if len(os.Args) < 3 {
			fmt.Println("Error: backup file path required for restore")
			exit(1)
			return
		}
		if err := runMaintenance(func(cfg *config.Config) error {
			return restore(cfg, os.Args[2])
		}); err != nil {
			fmt.Printf("Error: %v\n", err)
			exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: photoshare <command> [options]
Commands:
  help       Display this help message.
  version    Show version information.
  serve      Bootstrap the search index if it is empty, then serve the HTTP API.
  sync       Bootstrap the search index if it is empty, then exit.
  backup     [file]  Dump the record store (default backups/photoshare_<unix>.bak).
  restore    <file>  Replace the record store from a dump and rebuild the search index.

Configuration is read from config.yaml (or the file named by CONFIG_PATH)
and environment variables such as HTTP_ADDR, BADGER_PATH, SEARCH_INDEX_PATH,
ASSOCIATION_URL, ASSOCIATION_MOCK and LOG_LEVEL.
`
	fmt.Println(helpText)
}

func argAt(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

// runMaintenance runs fn with the loaded configuration and no open stores.
func runMaintenance(fn func(cfg *config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return fn(cfg)
}

// runCommand loads configuration, opens the application and runs fn until
// it returns or the process receives SIGINT or SIGTERM.
func runCommand(fn func(ctx context.Context, app *application) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close stores")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

func serve(ctx context.Context, app *application) error {
	if err := app.SyncIndex(ctx); err != nil {
		return err
	}
	return app.Serve(ctx)
}

func syncOnly(ctx context.Context, app *application) error {
	return app.SyncIndex(ctx)
}
