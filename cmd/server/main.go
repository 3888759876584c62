// Command notes-server runs the notes HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/goph-notes/internal/app"
	"github.com/and161185/goph-notes/internal/config"
	"github.com/and161185/goph-notes/internal/logger"
	"github.com/and161185/goph-notes/internal/migrate"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type serverFlags struct {
	configPath string
	addr       string
	healthAddr string
	driver     string
	dsn        string
	mongoURI   string
	jwtKey     string
	tokenTTL   time.Duration
	logLevel   string
	logFormat  string
}

// load reads the config file and applies only the flags given on the command line.
func (f *serverFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	fl := cmd.Flags()
	if fl.Changed("addr") {
		cfg.HTTP.Addr = f.addr
	}
	if fl.Changed("health-addr") {
		cfg.GRPC.HealthAddr = f.healthAddr
	}
	if fl.Changed("driver") {
		cfg.Store.Driver = f.driver
	}
	if fl.Changed("dsn") {
		cfg.Store.DSN = f.dsn
	}
	if fl.Changed("mongo-uri") {
		cfg.Store.MongoURI = f.mongoURI
	}
	if fl.Changed("jwt-key") {
		cfg.Auth.JWTKey = f.jwtKey
	}
	if fl.Changed("token-ttl") {
		cfg.Auth.TokenTTL = f.tokenTTL
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg, nil
}

func (f *serverFlags) bindServe(cmd *cobra.Command) {
	sf := cmd.Flags()
	sf.StringVar(&f.addr, "addr", ":8000", "HTTP listen address")
	sf.StringVar(&f.healthAddr, "health-addr", ":9090", "gRPC health listen address (empty disables)")
	sf.StringVar(&f.driver, "driver", config.DriverPostgres, "store driver (postgres|mongo|memory)")
	sf.StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection URI")
	sf.StringVar(&f.jwtKey, "jwt-key", "", "HS256 signing key (or "+config.JWTKeyEnv+")")
	sf.DurationVar(&f.tokenTTL, "token-ttl", 0, "session token lifetime")
}

func newRootCmd() *cobra.Command {
	f := &serverFlags{}
	root := &cobra.Command{
		Use:           "notes-server",
		Short:         "Personal notes API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file")
	pf.StringVar(&f.dsn, "dsn", "", "PostgreSQL DSN")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level")
	pf.StringVar(&f.logFormat, "log-format", "json", "log format (json|console)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			log.Info("starting",
				zap.String("version", version),
				zap.String("buildDate", buildDate),
				zap.String("addr", cfg.HTTP.Addr),
				zap.String("store", cfg.Store.Driver),
			)

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	f.bindServe(serve)

	root.AddCommand(serve, migrateCmd(f), versionCmd())
	return root
}

func migrateCmd(f *serverFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	step := func(use, short string, fn func(context.Context, string) ([]migrate.Result, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := f.load(cmd)
				if err != nil {
					return err
				}
				res, err := fn(cmd.Context(), cfg.Store.DSN)
				for _, r := range res {
					fmt.Fprintln(cmd.OutOrStdout(), r)
				}
				return err
			},
		}
	}
	cmd.AddCommand(
		step("up", "Apply all pending migrations", migrate.Up),
		step("down", "Roll back the last migration", migrate.Down),
		step("status", "Print migration status", migrate.Status),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notes-server %s (%s)\n", version, buildDate)
		},
	}
}
