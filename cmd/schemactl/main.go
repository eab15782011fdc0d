package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/business-school/campus-api/internal/app"
	"github.com/business-school/campus-api/internal/seed"
	"github.com/business-school/campus-api/pkg/cache"
	"github.com/business-school/campus-api/pkg/config"
	"github.com/business-school/campus-api/pkg/database"
	"github.com/business-school/campus-api/pkg/export"
	"github.com/business-school/campus-api/pkg/logger"
)

const usage = `usage: schemactl <command> [flags]

commands:
  migrate     apply pending schema migrations
  seed        insert missing demo rows
  verify      check the demo dataset without a database
  identity    reconcile roles and bootstrap accounts
  bootstrap   migrate, seed and reconcile identity under the bootstrap lock
  status      list applied migrations and catalog row counts
  export      write the points standings report (-format csv|pdf)
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "schemactl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return errUsage
	}
	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)

	switch name {
	case "verify":
		strict := fs.Bool("strict", false, "treat warnings as failures")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return verify(out, *strict)
	case "migrate", "seed", "identity", "bootstrap", "status":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return withContainer(ctx, name == "bootstrap", func(c *app.Container) error {
			return dispatch(ctx, name, c, out)
		})
	case "export":
		format := fs.String("format", string(export.FormatCSV), "report format: csv or pdf")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if !export.Format(*format).Valid() {
			return fmt.Errorf("unsupported format %q", *format)
		}
		return withContainer(ctx, false, func(c *app.Container) error {
			result, err := c.Reports.Export(ctx, export.Format(*format))
			if err != nil {
				return err
			}
			return printJSON(out, result)
		})
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(errOut, usage)
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
}

func dispatch(ctx context.Context, name string, c *app.Container, out io.Writer) error {
	var (
		result interface{}
		err    error
	)
	switch name {
	case "migrate":
		var applied []string
		applied, err = c.Migrator.Up(ctx)
		result = map[string]interface{}{"applied": applied}
	case "seed":
		result, err = c.Seed.Apply(ctx, seed.Default())
	case "identity":
		result, err = c.Identity.Reconcile(ctx, c.Config.Identity)
	case "bootstrap":
		result, err = c.Bootstrap.Run(ctx)
	case "status":
		result, err = c.Catalog.Status(ctx)
	}
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func verify(out io.Writer, strict bool) error {
	data := seed.Default()
	report := seed.Verify(data, validator.New())
	for _, table := range seed.Tables() {
		fmt.Fprintf(out, "%-18s %d rows\n", table, data.Counts()[table])
	}
	for _, finding := range report.Findings {
		fmt.Fprintln(out, finding.String())
	}
	if err := report.Err(strict); err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d error(s), %d warning(s)\n", len(report.Errors()), len(report.Warnings()))
	return nil
}

func withContainer(ctx context.Context, needsLock bool, fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if needsLock {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
	}

	container, err := app.NewContainer(cfg, db, redisClient, logr)
	if err != nil {
		return err
	}
	return fn(container)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
