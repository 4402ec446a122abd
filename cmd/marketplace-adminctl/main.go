package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urbanmart/marketplace-admin/config"
	"github.com/urbanmart/marketplace-admin/internal/bootstrap"
	"github.com/urbanmart/marketplace-admin/internal/data"
	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/migrate"
	"github.com/urbanmart/marketplace-admin/internal/ports"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer

	// resources builds the resource service on first use; tests replace it.
	resources func(cmdCtx *commandContext) (*service.ResourceService, func(), error)
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultRequestTimeout   = 30 * time.Second
)

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:       ctx,
		Logger:    logger,
		Config:    cfg,
		Out:       os.Stdout,
		resources: buildResourceService,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"resources": {
			name:        "resources",
			description: "List the resources in the catalog and what each supports",
			run:         runResources,
		},
		"list": {
			name:        "list",
			description: "Print one page of a resource: list <resource> [-page N] [-parent ID] [-q TEXT] [-filter k=v]",
			run:         runList,
		},
		"get": {
			name:        "get",
			description: "Print one row as JSON: get <resource> <id>",
			run:         runGet,
		},
		"delete": {
			name:        "delete",
			description: "Delete one row: delete <resource> <id> -yes",
			run:         runDelete,
		},
		"browse": {
			name:        "browse",
			description: "Page through a resource interactively: browse <resource> [-page N] [-parent ID]",
			run:         runBrowse,
		},
		"migrate": {
			name:        "migrate",
			description: "Run audit database migrations: migrate [-status] [-timeout D]",
			run:         runMigrations,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: marketplace-adminctl <command> [args] [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-10s %s\n", name, commands()[name].description); err != nil {
			return err
		}
	}
	return nil
}

// buildResourceService wires the upstream client with the static CLI token
// and, when a database is configured, the audit trail.
func buildResourceService(cmdCtx *commandContext) (*service.ResourceService, func(), error) {
	adapters, err := bootstrap.BuildStaticMarketplaceAdapters(&cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var audit ports.AuditRecorder
	db, err := bootstrap.ConnectDB(cmdCtx.Ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	switch {
	case err != nil:
		cmdCtx.Logger.Warn("audit database unavailable; mutations will not be recorded", "error", err)
	case db != nil:
		audit = data.NewAuditRepo(db)
		cleanup = func() { closeDB(cmdCtx.Logger, db) }
	}

	svc := service.NewResourceService(service.ResourceServiceOptions{
		Client:   adapters.Client,
		Catalog:  adapters.Catalog,
		Tokens:   adapters.Tokens,
		Audit:    audit,
		Logger:   cmdCtx.Logger,
		PageSize: cmdCtx.Config.Marketplace.PageSize,
	})
	return svc, cleanup, nil
}

func closeDB(logger *slog.Logger, db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Warn("db close failed", "error", err)
	}
}

func (c *commandContext) resourceService() (*service.ResourceService, func(), error) {
	if c.resources == nil {
		return nil, nil, errors.New("resource service is not configured")
	}
	return c.resources(c)
}

// positional splits off the first n positional arguments so flags may follow
// them, as in `list orders -page 2`.
func positional(args []string, n int, usage string) ([]string, []string, error) {
	if len(args) < n {
		return nil, nil, fmt.Errorf("usage: %s", usage)
	}
	for _, a := range args[:n] {
		if strings.HasPrefix(a, "-") {
			return nil, nil, fmt.Errorf("usage: %s", usage)
		}
	}
	return args[:n], args[n:], nil
}

// describeUpstream turns listing and client errors into operator-facing text.
func describeUpstream(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, listing.ErrNoCredential):
		return errors.New("no API token: set MARKETPLACE_API_TOKEN")
	case apperrors.IsAuth(err):
		return fmt.Errorf("the marketplace API rejected the token: %w", err)
	default:
		return err
	}
}

func runResources(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("resources", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := bootstrap.LoadCatalog(cmdCtx.Config.Marketplace)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "NAME\tTITLE\tPARENT\tENDPOINT\n"); err != nil {
		return err
	}
	for _, ep := range cat.Endpoints() {
		parent := ep.Parent
		if parent == "" {
			parent = "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", ep.Name, ep.Title, parent, service.Describe(ep)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type listOptions struct {
	Page    int
	Parent  string
	Query   string
	Filters filterFlag
	Timeout time.Duration
}

// filterFlag collects repeated -filter key=value pairs.
type filterFlag map[string]string

func (f filterFlag) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (f filterFlag) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("filter %q must be key=value", v)
	}
	f[strings.TrimSpace(key)] = value
	return nil
}

func parseListFlags(name string, args []string) (listOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listOptions{Filters: filterFlag{}}
	fs.IntVar(&opts.Page, "page", 1, "Page to show (1-based)")
	fs.StringVar(&opts.Parent, "parent", "", "Parent id for nested resources")
	fs.StringVar(&opts.Query, "q", "", "Search text")
	fs.Var(opts.Filters, "filter", "Extra list filter as key=value (repeatable)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultRequestTimeout, "Request timeout")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Page < 1 {
		return listOptions{}, errors.New("-page must be at least 1")
	}
	if opts.Timeout <= 0 {
		return listOptions{}, errors.New("-timeout must be greater than zero")
	}
	if opts.Query != "" {
		opts.Filters["q"] = opts.Query
	}
	return opts, nil
}

func runList(cmdCtx *commandContext, args []string) error {
	pos, rest, err := positional(args, 1, "list <resource> [flags]")
	if err != nil {
		return err
	}
	opts, err := parseListFlags("list", rest)
	if err != nil {
		return err
	}

	svc, cleanup, err := cmdCtx.resourceService()
	if err != nil {
		return err
	}
	defer cleanup()

	ctl, err := svc.NewListView(pos[0], service.ViewQuery{Page: opts.Page, Parent: opts.Parent, Filters: opts.Filters})
	if err != nil {
		return err
	}
	defer ctl.Close()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()
	if err := ctl.Mount(ctx); err != nil {
		return describeUpstream(err)
	}
	return printView(cmdCtx.Out, ctl.Snapshot())
}

// printView writes the rendered table followed by the pagination summary.
func printView(w io.Writer, v listing.View[resource.Row]) error {
	if v.Table.Empty() {
		if err := writef(w, "No records found.\n"); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		headers := make([]string, 0, len(v.Table.Headers)+1)
		headers = append(headers, "ID")
		for _, h := range v.Table.Headers {
			headers = append(headers, strings.ToUpper(h.Label))
		}
		if err := writef(tw, "%s\n", strings.Join(headers, "\t")); err != nil {
			return err
		}
		for _, row := range v.Table.Rows {
			cells := make([]string, 0, len(row.Cells)+1)
			cells = append(cells, row.ID)
			for _, c := range row.Cells {
				cells = append(cells, cellText(c))
			}
			if err := writef(tw, "%s\n", strings.Join(cells, "\t")); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return writef(w, "\nPage %d of %d\n", v.Page.Current, v.Page.Total)
}

func cellText(c listing.Cell) string {
	switch {
	case c.Toggle != nil && c.Text == "":
		if c.Toggle.On {
			return "on"
		}
		return "off"
	case c.HasProgress && c.Text == "":
		return fmt.Sprintf("%d%%", c.Progress)
	case c.Text == "" && c.ImageURL != "":
		return c.ImageURL
	default:
		return strings.ReplaceAll(c.Text, "\t", " ")
	}
}

func runGet(cmdCtx *commandContext, args []string) error {
	pos, rest, err := positional(args, 2, "get <resource> <id>")
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	timeout := fs.Duration("timeout", defaultRequestTimeout, "Request timeout")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	svc, cleanup, err := cmdCtx.resourceService()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Endpoint(pos[0]); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, *timeout)
	defer cancel()
	row, err := svc.Get(ctx, pos[0], pos[1])
	if err != nil {
		return describeUpstream(err)
	}

	enc := json.NewEncoder(cmdCtx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(row)
}

func runDelete(cmdCtx *commandContext, args []string) error {
	pos, rest, err := positional(args, 2, "delete <resource> <id> -yes")
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Confirm the deletion")
	timeout := fs.Duration("timeout", defaultRequestTimeout, "Request timeout")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	name, id := pos[0], pos[1]

	svc, cleanup, err := cmdCtx.resourceService()
	if err != nil {
		return err
	}
	defer cleanup()

	ep, err := svc.Endpoint(name)
	if err != nil {
		return err
	}
	if !ep.CanRemove() {
		return fmt.Errorf("%s rows cannot be deleted", name)
	}

	ctl, err := svc.NewListView(name, service.ViewQuery{Page: 1})
	if err != nil {
		return err
	}
	defer ctl.Close()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, *timeout)
	defer cancel()
	if err := ctl.Act(ctx, svc.DeleteAction(name, id, *yes)); err != nil {
		if errors.Is(err, listing.ErrConfirmationRequired) {
			return fmt.Errorf("refusing to delete %s %s without -yes", name, id)
		}
		return describeUpstream(err)
	}

	msg := "Deleted."
	if n := ctl.Snapshot().Notice; n != nil {
		msg = n.Message
	}
	return writef(cmdCtx.Out, "%s (%s %s)\n", msg, name, id)
}

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)
	fs.BoolVar(&opts.Status, "status", false, "List migrations and whether they are applied, without applying any")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}

	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.Postgres.Enabled() {
		return errors.New("no audit database configured: set DB_HOST")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeDB(cmdCtx.Logger, db)

	if opts.Status {
		return printMigrationStatus(ctx, cmdCtx.Out, db)
	}

	cmdCtx.Logger.Info("running database migrations")

	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func printMigrationStatus(ctx context.Context, w io.Writer, db *sql.DB) error {
	status, err := migrate.Status(ctx, db)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "VERSION\tSTATE\n"); err != nil {
		return err
	}
	for _, m := range status {
		state := "pending"
		if m.Applied {
			state = "applied"
		}
		if err := writef(tw, "%s\t%s\n", m.Version, state); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
