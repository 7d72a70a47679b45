package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/trackwaste/publicstats/pkg/build"
	"github.com/trackwaste/publicstats/pkg/logger"
	"github.com/trackwaste/publicstats/pkg/metrics"
	"github.com/trackwaste/publicstats/pkg/server"
	"github.com/trackwaste/publicstats/pkg/snapshot"
	"github.com/trackwaste/publicstats/pkg/warehouse"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")

	// ClickHouse warehouse configuration
	clickhouseAddrFlag := flag.String("clickhouse-addr", "", "ClickHouse address (host:port) (or set CLICKHOUSE_ADDR_TCP env var)")
	clickhouseDatabaseFlag := flag.String("clickhouse-database", "default", "ClickHouse database name (or set CLICKHOUSE_DATABASE env var)")
	clickhouseUsernameFlag := flag.String("clickhouse-username", "default", "ClickHouse username (or set CLICKHOUSE_USERNAME env var)")
	clickhousePasswordFlag := flag.String("clickhouse-password", "", "ClickHouse password (or set CLICKHOUSE_PASSWORD env var)")
	clickhouseSecureFlag := flag.Bool("clickhouse-secure", false, "Enable TLS for ClickHouse Cloud (or set CLICKHOUSE_SECURE=true env var)")
	queryTimeoutFlag := flag.Duration("query-timeout", 5*time.Minute, "Timeout for a single warehouse extraction query")

	// Postgres snapshot configuration
	postgresHostFlag := flag.String("postgres-host", "localhost", "Postgres host (or set POSTGRES_HOST env var)")
	postgresPortFlag := flag.String("postgres-port", "5432", "Postgres port (or set POSTGRES_PORT env var)")
	postgresDatabaseFlag := flag.String("postgres-database", "", "Postgres database name (or set POSTGRES_DATABASE env var)")
	postgresUsernameFlag := flag.String("postgres-username", "", "Postgres username (or set POSTGRES_USERNAME env var)")
	postgresPasswordFlag := flag.String("postgres-password", "", "Postgres password (or set POSTGRES_PASSWORD env var)")
	postgresSSLModeFlag := flag.String("postgres-sslmode", "disable", "Postgres sslmode (or set POSTGRES_SSLMODE env var)")

	// Commands
	migrateFlag := flag.Bool("migrate", false, "Run Postgres snapshot schema migrations using goose")
	buildFlag := flag.Bool("build", false, "Build one year's snapshot and exit")
	serveFlag := flag.Bool("serve", false, "Run the refresh loop and the read API")

	// Command options
	yearFlag := flag.Int("year", 0, "Year to build with --build (0 = current year)")
	portFlag := flag.Int("port", 8080, "HTTP listen port for --serve (or set PORT env var)")
	refreshIntervalFlag := flag.Duration("refresh-interval", time.Hour, "Snapshot refresh interval for --serve")

	flag.Parse()

	log := logger.New(*verboseFlag)

	// Override flags with environment variables if set
	if env := os.Getenv("CLICKHOUSE_ADDR_TCP"); env != "" {
		*clickhouseAddrFlag = env
	}
	if env := os.Getenv("CLICKHOUSE_DATABASE"); env != "" {
		*clickhouseDatabaseFlag = env
	}
	if env := os.Getenv("CLICKHOUSE_USERNAME"); env != "" {
		*clickhouseUsernameFlag = env
	}
	if env := os.Getenv("CLICKHOUSE_PASSWORD"); env != "" {
		*clickhousePasswordFlag = env
	}
	if os.Getenv("CLICKHOUSE_SECURE") == "true" {
		*clickhouseSecureFlag = true
	}
	if env := os.Getenv("POSTGRES_HOST"); env != "" {
		*postgresHostFlag = env
	}
	if env := os.Getenv("POSTGRES_PORT"); env != "" {
		*postgresPortFlag = env
	}
	if env := os.Getenv("POSTGRES_DATABASE"); env != "" {
		*postgresDatabaseFlag = env
	}
	if env := os.Getenv("POSTGRES_USERNAME"); env != "" {
		*postgresUsernameFlag = env
	}
	if env := os.Getenv("POSTGRES_PASSWORD"); env != "" {
		*postgresPasswordFlag = env
	}
	if env := os.Getenv("POSTGRES_SSLMODE"); env != "" {
		*postgresSSLModeFlag = env
	}
	if env := os.Getenv("PORT"); env != "" {
		if _, err := fmt.Sscanf(env, "%d", portFlag); err != nil {
			return fmt.Errorf("invalid PORT env var %q: %w", env, err)
		}
	}

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	postgresCfg := snapshot.Config{
		Host:     *postgresHostFlag,
		Port:     *postgresPortFlag,
		Database: *postgresDatabaseFlag,
		Username: *postgresUsernameFlag,
		Password: *postgresPasswordFlag,
		SSLMode:  *postgresSSLModeFlag,
	}

	if *migrateFlag {
		return snapshot.Migrate(log, postgresCfg)
	}

	if !*buildFlag && !*serveFlag {
		flag.Usage()
		return fmt.Errorf("one of --migrate, --build or --serve is required")
	}

	if *clickhouseAddrFlag == "" {
		return fmt.Errorf("--clickhouse-addr is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := warehouse.NewClient(ctx, log, warehouse.Config{
		Addr:         *clickhouseAddrFlag,
		Database:     *clickhouseDatabaseFlag,
		Username:     *clickhouseUsernameFlag,
		Password:     *clickhousePasswordFlag,
		Secure:       *clickhouseSecureFlag,
		QueryTimeout: *queryTimeoutFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer client.Close()

	store, err := snapshot.NewStore(ctx, log, postgresCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer store.Close()

	svc, err := build.NewService(build.ServiceConfig{
		Logger:          log,
		Extractor:       warehouse.NewExtractor(client, log, *queryTimeoutFlag),
		Store:           store,
		RefreshInterval: *refreshIntervalFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to create build service: %w", err)
	}

	if *buildFlag {
		year := *yearFlag
		if year == 0 {
			year = time.Now().UTC().Year()
		}
		return svc.BuildYear(ctx, year)
	}

	svc.Start(ctx)

	srv, err := server.NewServer(server.Config{
		Logger:  log,
		Store:   store,
		Ready:   svc.Ready,
		Port:    *portFlag,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
