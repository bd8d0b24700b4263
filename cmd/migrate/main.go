package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fintrack/backend/internal/infrastructure/config"
	"github.com/fintrack/backend/internal/infrastructure/logger"
	"github.com/fintrack/backend/internal/infrastructure/migration"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if dir == "" {
		dir = locateMigrations()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	cmd, rest := args[0], args[1:]

	// create and list only touch the filesystem
	switch cmd {
	case "create":
		if len(rest) < 1 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		pair, err := migration.Scaffold(dir, rest[0])
		if err != nil {
			log.Fatal("Failed to scaffold migration", zap.Error(err))
		}
		log.Info("Migration scaffolded",
			zap.String("version", pair.Version),
			zap.String("up", pair.UpFile),
			zap.String("down", pair.DownFile),
		)
		return

	case "list":
		names, err := migration.Available(dir)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	if err := runAgainstDatabase(cmd, rest, dir, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", cmd), zap.Error(err))
	}
}

// runAgainstDatabase handles the subcommands that need a live connection.
// The connection settings come from the same environment contract the
// server uses.
func runAgainstDatabase(cmd string, args []string, dir string, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	mg, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	switch cmd {
	case "up":
		return mg.Up()

	case "down":
		return mg.Down()

	case "step":
		if len(args) < 1 {
			return fmt.Errorf("step count required")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return mg.Steps(n)

	case "version":
		version, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current schema version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("version required")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return mg.Force(version)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// locateMigrations resolves the migrations directory relative to the
// working directory, falling back to the directory next to the binary
// (the layout inside the container image).
func locateMigrations() string {
	if _, err := os.Stat(defaultMigrationsDir); err == nil {
		return defaultMigrationsDir
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsDir)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsDir
}

func usage() {
	fmt.Println(`Usage: migrate [-path <dir>] [-log-level <level>] <command>

Commands:
  up               apply every pending migration
  down             roll back every applied migration
  step <n>         apply n migrations (negative n rolls back)
  version          print the current schema version
  force <version>  overwrite the recorded version (dirty-state recovery)
  create <name>    scaffold an empty up/down migration pair
  list             list the migration pairs in the directory

Database settings come from the POSTGRES_* environment variables of the
server configuration contract.`)
}
