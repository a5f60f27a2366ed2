// Command planetsctl manages the planets database: create, drop and seed.
//
// Usage:
//
//	planetsctl [flags] db:create|db:drop|db:seed
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/planetsapi/planets/internal/auth"
	"github.com/planetsapi/planets/internal/repository"
	"github.com/planetsapi/planets/internal/service"
)

type output struct {
	Command       string                       `json:"command"`
	DatabasePath  string                       `json:"database_path"`
	SchemaVersion int64                        `json:"schema_version"`
	Migrations    []repository.MigrationResult `json:"migrations,omitempty"`
	Seed          *repository.SeedResult       `json:"seed,omitempty"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	var (
		databasePath = flag.String("database-path", envOr("DATABASE_PATH", "planets.db"), "SQLite database file")
		format       = flag.String("format", "plain", "Output format: plain or json")
		timeout      = flag.Duration("timeout", 30*time.Second, "Overall command timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] db:create|db:drop|db:seed\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *format != "plain" && *format != "json" {
		fmt.Fprintln(os.Stderr, "format must be plain or json")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out, err := run(ctx, flag.Arg(0), *databasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		cancel()
		os.Exit(1)
	}

	if err := write(os.Stdout, *format, out); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, command, databasePath string) (*output, error) {
	repo, err := repository.New(ctx, databasePath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	out := &output{Command: command, DatabasePath: databasePath}

	switch command {
	case "db:create":
		out.Migrations, err = repo.Migrate(ctx)
	case "db:drop":
		out.Migrations, err = repo.Drop(ctx)
	case "db:seed":
		out.Seed, err = seed(ctx, repo)
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return nil, err
	}

	out.SchemaVersion, err = repo.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// seed requires the schema to exist; run db:create first.
func seed(ctx context.Context, repo *repository.Repository) (*repository.SeedResult, error) {
	version, err := repo.SchemaVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("database has no schema, run db:create first: %w", err)
	}
	if version == 0 {
		return nil, errors.New("database has no schema, run db:create first")
	}

	hasher, err := auth.NewPasswordHasher(auth.DefaultParams)
	if err != nil {
		return nil, err
	}
	return service.Seed(ctx, repo, hasher)
}

func write(w io.Writer, format string, out *output) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch out.Command {
	case "db:create":
		fmt.Fprintf(w, "Database created! %d migration(s) applied.\n", len(out.Migrations))
	case "db:drop":
		fmt.Fprintf(w, "Database dropped! %d migration(s) rolled back.\n", len(out.Migrations))
	case "db:seed":
		fmt.Fprintf(w, "Database seeded! planets: %d added, %d existing; users: %d added, %d existing.\n",
			out.Seed.PlanetsInserted, out.Seed.PlanetsSkipped, out.Seed.UsersInserted, out.Seed.UsersSkipped)
	}
	_, err := fmt.Fprintf(w, "database: %s, schema version: %d\n", out.DatabasePath, out.SchemaVersion)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
