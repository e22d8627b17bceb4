package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sinaliza-recon/internal/config"
	"sinaliza-recon/internal/necessidade/handler"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/necessidade/service"
	"sinaliza-recon/internal/store/postgres"
	"sinaliza-recon/internal/store/sqlite"
	serverhttp "sinaliza-recon/server/http"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "sinaliza-recon",
	Short: "Reconcile road-signage project spreadsheets against the field inventory",
	Long: `sinaliza-recon imports project spreadsheets (necessidades) for one lote,
rodovia and asset type, matches each row against the surveyed inventory
(cadastro) and classifies the service to perform.

Configuration comes from the environment, optionally preloaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to preload (missing file is ignored)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cadastroCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// recordStore is what the commands need from either store implementation.
type recordStore interface {
	service.ImportStore
	service.DecisionStore
	UpsertCadastro(ctx context.Context, items []model.CadastroItem) error
	Ping(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) (recordStore, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		return postgres.Open(ctx, cfg.DatabaseDSN)
	case config.StoreSQLite:
		st, err := sqlite.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// setup loads config, logger and store shared by every command.
func setup(ctx context.Context) (config.Config, zerolog.Logger, recordStore, func(), error) {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, logger, nil, nil, fmt.Errorf("config: %w", err)
	}
	st, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return cfg, logger, nil, nil, fmt.Errorf("store: %w", err)
	}
	return cfg, logger, st, closeFn, nil
}

func newImporter(cfg config.Config, st recordStore, logger zerolog.Logger) (*service.Importer, error) {
	tol, err := config.LoadTolerances(cfg.ToleranceFile, cfg.ToleranceM)
	if err != nil {
		return nil, err
	}
	return service.NewImporter(st, tol, logger, service.WithBatchSize(cfg.BatchSize)), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, st, closeStore, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	im, err := newImporter(cfg, st, logger)
	if err != nil {
		return err
	}
	wf := service.NewWorkflow(st, nil, nil, logger)
	nec := handler.New(im, wf, cfg.MaxUploadMB, logger)
	r := serverhttp.NewRouter(cfg, logger, nec, st)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store).Msg("server starting")

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
	return nil
}
