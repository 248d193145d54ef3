package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/migrate"
)

const usage = "migration command: up|down|status|version|create|validate"

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", usage)
	dir := flag.String("dir", "", "migrations directory; empty uses the set embedded in the binary ("+migrate.DefaultDir+" for create)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline for database commands")
	flag.Parse()

	// create and validate work on files only and run without config
	switch *cmd {
	case "create":
		if *name == "" {
			exitf("missing -name for create")
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name)
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.Validate(migrate.Source(*dir)); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	source := migrate.Source(*dir)
	switch *cmd {
	case "up":
		results, err := migrate.Up(ctx, sqlDB, source)
		printResults(results)
		if err != nil {
			exitf("migrate up failed: %v", err)
		}
		if len(results) == 0 {
			fmt.Println("schema already up to date")
		}

	case "down":
		result, err := migrate.Down(ctx, sqlDB, source)
		if err != nil {
			exitf("migrate down failed: %v", err)
		}
		if result != nil {
			printResults([]migrate.Result{*result})
		}

	case "status":
		statuses, err := migrate.Statuses(ctx, sqlDB, source)
		if err != nil {
			exitf("migrate status failed: %v", err)
		}
		for _, st := range statuses {
			state := "pending"
			if st.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %d %s\n", state, st.Version, st.Path)
		}

	case "version":
		if *version == "" {
			exitf("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, source, *version); err != nil {
			exitf("migrate to version failed: %v", err)
		}

	default:
		exitf("unknown -cmd value %q (%s)", *cmd, usage)
	}
	logg.Info(ctx, "migrate finished")
}

func printResults(results []migrate.Result) {
	for _, r := range results {
		fmt.Printf("%-4s %d %s\n", r.Direction, r.Version, r.Path)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
